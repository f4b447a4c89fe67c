package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotANumber is returned when a candidate string holds no parseable number.
var ErrNotANumber = errors.New("not a number")

// centsDigits is the fraction length that marks a lone comma as a decimal point.
const centsDigits = 2

// ParseNumber converts a localized price string such as "1.234,56 €" or
// "$1,234.56" into a decimal. Everything but digits, '.' and ',' is dropped.
// When both separators appear the later one is the decimal point. A lone
// comma is a decimal point only when it occurs once with exactly two digits
// after it. A lone dot is always a decimal point. No rounding is applied.
func ParseNumber(raw string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			return r
		}
		return -1
	}, raw)

	if strings.IndexFunc(cleaned, isDigit) < 0 {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotANumber, raw)
	}

	normalized := normalizeSeparators(cleaned)

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotANumber, raw)
	}
	return d, nil
}

func normalizeSeparators(s string) string {
	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 == centsDigits {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	default:
		return s
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
