package extract

import (
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Default selectors, most specific first.
var (
	DefaultPrimarySelectors = []string{
		"#corePrice_feature_div .a-offscreen",
		"#corePriceDisplay_desktop_feature_div .a-offscreen",
		"#apex_desktop .a-offscreen",
		"#priceblock_ourprice",
		"#price_inside_buybox",
		".a-price .a-offscreen",
	}
	DefaultSecondarySelectors = []string{
		"#priceblock_dealprice",
		"#priceblock_saleprice",
		"#newBuyBoxPrice",
		"#buybox .a-color-price",
		"#kindle-price",
		".offer-price",
		"#sns-base-price",
	}
	DefaultMetaSelectors = []string{
		`meta[property="product:price:amount"]`,
		`meta[property="og:price:amount"]`,
		`meta[itemprop="price"]`,
		`meta[name="twitter:data1"]`,
		`[itemprop="price"][content]`,
	}
	DefaultTitleSelectors = []string{
		"#productTitle",
		`meta[property="og:title"]`,
		"title",
	}
)

// DefaultPatterns match euro amounts in free text. The first pattern with
// any match wins. Each capture starts after a non-numeric boundary so a match
// never begins inside a longer number. Thousands groups accept a dot or a
// non-breaking space, never a plain space.
var DefaultPatterns = []string{
	`(?i)(?:^|[^\d.,])(\d{1,3}(?:(?:\.|\x{00A0}|&nbsp;)\d{3})+,\d{2}|\d+,\d{2})(?:\s|\x{00A0}|&nbsp;)*(?:€|&euro;|&#8364;|eur\b)`,
	`(?i)(?:€|&euro;|&#8364;|\beur)(?:\s|\x{00A0}|&nbsp;)*(\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{2})?|\d+(?:[.,]\d{1,2})?)(?:[^\d]|$)`,
	`(?i)(?:^|[^\d.,])(\d+(?:[.,]\d{1,2})?)(?:\s|\x{00A0}|&nbsp;)*(?:€|&euro;|&#8364;)`,
}

// SelectorStrategy reads the text of elements matched by CSS selectors.
type SelectorStrategy struct {
	source    Source
	selectors []string
	// splitPrice also combines .a-price-whole with .a-price-fraction.
	splitPrice bool
}

// NewSelectorStrategy returns a strategy over selectors, tried in order.
func NewSelectorStrategy(source Source, selectors []string, splitPrice bool) *SelectorStrategy {
	return &SelectorStrategy{source: source, selectors: selectors, splitPrice: splitPrice}
}

// Name implements Strategy.
func (s *SelectorStrategy) Name() Source { return s.source }

// Candidates implements Strategy.
func (s *SelectorStrategy) Candidates(doc *goquery.Document, _ string) []Candidate {
	var out []Candidate
	for _, sel := range s.selectors {
		doc.Find(sel).Each(func(_ int, el *goquery.Selection) {
			if text := strings.TrimSpace(el.Text()); text != "" {
				out = append(out, Candidate{Raw: text, Source: s.source})
			}
		})
	}
	if s.splitPrice {
		out = append(out, splitPriceCandidates(doc, s.source)...)
	}
	return out
}

// splitPriceCandidates joins prices rendered as separate whole and fraction parts.
func splitPriceCandidates(doc *goquery.Document, source Source) []Candidate {
	var out []Candidate
	doc.Find(".a-price").Each(func(_ int, el *goquery.Selection) {
		whole := strings.TrimSpace(el.Find(".a-price-whole").First().Text())
		whole = strings.TrimRight(whole, ".,")
		if whole == "" {
			return
		}
		if fraction := strings.TrimSpace(el.Find(".a-price-fraction").First().Text()); fraction != "" {
			whole += "," + fraction
		}
		out = append(out, Candidate{Raw: whole, Source: source})
	})
	return out
}

// MetaStrategy reads price attributes from meta tags and microdata.
type MetaStrategy struct {
	selectors []string
}

// NewMetaStrategy returns a strategy over selectors, tried in order.
func NewMetaStrategy(selectors []string) *MetaStrategy {
	return &MetaStrategy{selectors: selectors}
}

// Name implements Strategy.
func (s *MetaStrategy) Name() Source { return SourceMeta }

// Candidates implements Strategy.
func (s *MetaStrategy) Candidates(doc *goquery.Document, _ string) []Candidate {
	var out []Candidate
	for _, sel := range s.selectors {
		doc.Find(sel).Each(func(_ int, el *goquery.Selection) {
			value, ok := el.Attr("content")
			if !ok {
				value = el.Text()
			}
			if value = strings.TrimSpace(value); value != "" {
				out = append(out, Candidate{Raw: value, Source: SourceMeta})
			}
		})
	}
	return out
}

// TextStrategy scans the raw markup with regular expressions.
type TextStrategy struct {
	patterns []*regexp.Regexp
}

// NewTextStrategy compiles patterns. Invalid patterns are skipped.
func NewTextStrategy(patterns []string) *TextStrategy {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if re, err := regexp.Compile(p); err == nil {
			compiled = append(compiled, re)
		}
	}
	return &TextStrategy{patterns: compiled}
}

// Name implements Strategy.
func (s *TextStrategy) Name() Source { return SourceText }

// Candidates implements Strategy. Matches of the winning pattern come back in
// ascending numeric order so the smallest plausible amount is tried first;
// matches that do not parse go last.
func (s *TextStrategy) Candidates(_ *goquery.Document, raw string) []Candidate {
	for _, re := range s.patterns {
		matches := re.FindAllStringSubmatch(raw, -1)
		if len(matches) == 0 {
			continue
		}

		out := make([]Candidate, 0, len(matches))
		for _, m := range matches {
			text := m[0]
			if len(m) > 1 && m[1] != "" {
				text = m[1]
			}
			out = append(out, Candidate{Raw: strings.TrimSpace(text), Source: SourceText})
		}
		slices.SortStableFunc(out, compareParsed)
		return out
	}
	return nil
}

func compareParsed(a, b Candidate) int {
	da, errA := ParseNumber(a.Raw)
	db, errB := ParseNumber(b.Raw)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return 1
	case errB != nil:
		return -1
	default:
		return da.Cmp(db)
	}
}
