package extract

import (
	"strings"
	"sync"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Validator decides whether a parsed number is a plausible price for a
// product, given its title.
type Validator struct {
	min, max decimal.Decimal
	bands    []band
	keywords []string
	// keywordBand maps a keyword index in the matcher to its band.
	keywordBand []int

	// mu serializes the matcher, which keeps per-search state.
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
}

type band struct {
	name     string
	min, max decimal.Decimal
}

// NewValidator builds a validator. Zero config fields take their defaults.
func NewValidator(cfg ValidatorConfig) *Validator {
	cfg = cfg.WithDefaults()

	v := &Validator{
		min: decimal.NewFromFloat(cfg.MinPrice),
		max: decimal.NewFromFloat(cfg.MaxPrice),
	}

	for i, b := range cfg.Bands {
		v.bands = append(v.bands, band{
			name: b.Name,
			min:  decimal.NewFromFloat(b.Min),
			max:  decimal.NewFromFloat(b.Max),
		})
		for _, kw := range b.Keywords {
			if kw = normalizeTitle(kw); kw == "" {
				continue
			}
			// Padding makes the automaton match whole words only.
			v.keywords = append(v.keywords, " "+kw+" ")
			v.keywordBand = append(v.keywordBand, i)
		}
	}
	if len(v.keywords) > 0 {
		v.matcher = ahocorasick.NewStringMatcher(v.keywords)
	}
	return v
}

// Validate reports whether price is plausible. Prices at or below zero are
// always rejected. Without a matching band the global range applies; a
// matching band replaces the global minimum and narrows the maximum.
func (v *Validator) Validate(price decimal.Decimal, title string) bool {
	if !price.IsPositive() {
		return false
	}

	lo, hi := v.min, v.max
	if b, ok := v.bandFor(title); ok {
		lo = b.min
		hi = decimal.Min(b.max, v.max)
	}
	return price.GreaterThanOrEqual(lo) && price.LessThanOrEqual(hi)
}

// Band returns the name of the band the title falls in, if any.
func (v *Validator) Band(title string) (string, bool) {
	b, ok := v.bandFor(title)
	return b.name, ok
}

// bandFor returns the earliest configured band with a keyword in title.
func (v *Validator) bandFor(title string) (band, bool) {
	if v.matcher == nil || strings.TrimSpace(title) == "" {
		return band{}, false
	}

	text := " " + normalizeTitle(title) + " "
	best := -1
	v.mu.Lock()
	hits := v.matcher.Match([]byte(text))
	v.mu.Unlock()

	for _, hit := range hits {
		if hit >= len(v.keywordBand) {
			continue
		}
		if idx := v.keywordBand[hit]; best < 0 || idx < best {
			best = idx
		}
	}
	if best < 0 {
		return band{}, false
	}
	return v.bands[best], true
}

// normalizeTitle folds accents, lowercases and reduces the text to
// single-space separated words. Dots inside a word such as "m.2" are kept.
func normalizeTitle(s string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.'
	})

	words := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "."); f != "" {
			words = append(words, f)
		}
	}
	return strings.Join(words, " ")
}
