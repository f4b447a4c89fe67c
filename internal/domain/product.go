// Package domain holds the data model shared by the extraction engine, the
// history aggregator and the run orchestrator.
package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultProductName is used when a catalog entry carries no name.
const DefaultProductName = "Unnamed product"

// Product errors.
var (
	ErrMissingURL    = errors.New("product url is required")
	ErrInvalidTarget = errors.New("product target price must be positive")
)

// Product is one tracked item. Name is the unique key for history.
type Product struct {
	Name        string          `json:"name"         mapstructure:"name"         yaml:"name"`
	URL         string          `json:"url"          mapstructure:"url"          yaml:"url"`
	TargetPrice decimal.Decimal `json:"target_price" mapstructure:"target_price" yaml:"target_price"`
}

// Normalize trims fields and applies the placeholder name.
func (p Product) Normalize() Product {
	p.Name = strings.TrimSpace(p.Name)
	p.URL = strings.TrimSpace(p.URL)
	if p.Name == "" {
		p.Name = DefaultProductName
	}
	return p
}

// Validate checks the required fields.
func (p Product) Validate() error {
	if strings.TrimSpace(p.URL) == "" {
		return ErrMissingURL
	}
	if !p.TargetPrice.IsPositive() {
		return ErrInvalidTarget
	}
	return nil
}

// Slug turns a product name into a lowercase identifier made of ASCII
// letters, digits and single dashes.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "product"
	}
	return slug
}
