package extract

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxJSONDepth bounds the walk over nested structured data.
const maxJSONDepth = 32

// keyRank orders price-like keys, compared case-insensitively. Lower ranks
// are offered first.
var keyRank = map[string]int{
	"price":       0,
	"priceamount": 0,
	"value":       1,
}

const rankLevels = 2

var errJSONDelim = errors.New("unexpected json delimiter")

// member is one key of a JSON object, kept in document order.
type member struct {
	key   string
	value any
}

// object is a JSON object decoded without losing key order.
type object []member

// StructuredDataStrategy walks JSON-LD blocks for price-like keys.
type StructuredDataStrategy struct{}

// NewStructuredDataStrategy returns the JSON-LD strategy.
func NewStructuredDataStrategy() *StructuredDataStrategy {
	return &StructuredDataStrategy{}
}

// Name implements Strategy.
func (s *StructuredDataStrategy) Name() Source { return SourceStructuredData }

// Candidates implements Strategy. Blocks that are not valid JSON are skipped.
// Keys are visited in document order. Every "price" or "priceAmount" value
// comes before any "value" key.
func (s *StructuredDataStrategy) Candidates(doc *goquery.Document, _ string) []Candidate {
	var tiers [rankLevels][]Candidate
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, el *goquery.Selection) {
		text := strings.TrimSpace(el.Text())
		if text == "" {
			return
		}

		dec := json.NewDecoder(strings.NewReader(text))
		dec.UseNumber()

		data, err := decodeOrdered(dec, 0)
		if err != nil {
			return
		}
		walkJSON(data, 0, &tiers)
	})

	var out []Candidate
	for _, tier := range tiers {
		out = append(out, tier...)
	}
	return out
}

// decodeOrdered reads one JSON value. Containers nested deeper than
// maxJSONDepth are consumed but dropped.
func decodeOrdered(dec *json.Decoder, depth int) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		var obj object
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			value, err := decodeOrdered(dec, depth+1)
			if err != nil {
				return nil, err
			}
			if depth <= maxJSONDepth {
				obj = append(obj, member{key: key, value: value})
			}
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		if depth > maxJSONDepth {
			return nil, nil
		}
		return obj, nil
	case '[':
		var arr []any
		for dec.More() {
			value, err := decodeOrdered(dec, depth+1)
			if err != nil {
				return nil, err
			}
			if depth <= maxJSONDepth {
				arr = append(arr, value)
			}
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		if depth > maxJSONDepth {
			return nil, nil
		}
		return arr, nil
	default:
		return nil, errJSONDelim
	}
}

func walkJSON(node any, depth int, tiers *[rankLevels][]Candidate) {
	if depth > maxJSONDepth {
		return
	}

	switch v := node.(type) {
	case object:
		for _, m := range v {
			if rank, ok := keyRank[strings.ToLower(m.key)]; ok {
				if raw, isScalar := scalarString(m.value); isScalar {
					tiers[rank] = append(tiers[rank], Candidate{Raw: raw, Source: SourceStructuredData})
					continue
				}
			}
			walkJSON(m.value, depth+1, tiers)
		}
	case []any:
		for _, child := range v {
			walkJSON(child, depth+1, tiers)
		}
	}
}

func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		s = strings.TrimSpace(s)
		return s, s != ""
	case json.Number:
		return s.String(), true
	default:
		return "", false
	}
}
