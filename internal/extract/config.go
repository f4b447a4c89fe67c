package extract

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Config holds the candidate location settings. Empty lists take the defaults.
type Config struct {
	Selectors     SelectorConfig `yaml:"selectors"`
	Patterns      []string       `yaml:"patterns"`
	StrategyPause time.Duration  `env:"EXTRACT_STRATEGY_PAUSE" yaml:"strategy_pause"`
}

// SelectorConfig lists CSS selectors per strategy.
type SelectorConfig struct {
	Primary   []string `yaml:"primary"`
	Secondary []string `yaml:"secondary"`
	Meta      []string `yaml:"meta"`
	Title     []string `yaml:"title"`
}

// WithDefaults returns a copy of the config with default values applied for zero-value fields.
func (c Config) WithDefaults() Config {
	if len(c.Selectors.Primary) == 0 {
		c.Selectors.Primary = DefaultPrimarySelectors
	}
	if len(c.Selectors.Secondary) == 0 {
		c.Selectors.Secondary = DefaultSecondarySelectors
	}
	if len(c.Selectors.Meta) == 0 {
		c.Selectors.Meta = DefaultMetaSelectors
	}
	if len(c.Selectors.Title) == 0 {
		c.Selectors.Title = DefaultTitleSelectors
	}
	if len(c.Patterns) == 0 {
		c.Patterns = DefaultPatterns
	}
	return c
}

// Validate checks that every pattern compiles.
func (c Config) Validate() error {
	for _, p := range c.Patterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("pattern %q: %w", p, err)
		}
	}
	if c.StrategyPause < 0 {
		return errors.New("strategy_pause must not be negative")
	}
	return nil
}

// Default price bounds.
const (
	defaultMinPrice = 1
	defaultMaxPrice = 50000
)

// ValidatorConfig holds the plausibility bands. Bands are checked in order
// and the first whose keywords appear in the title applies.
type ValidatorConfig struct {
	MinPrice float64      `env:"VALIDATOR_MIN_PRICE" yaml:"min_price"`
	MaxPrice float64      `env:"VALIDATOR_MAX_PRICE" yaml:"max_price"`
	Bands    []BandConfig `yaml:"bands"`
}

// BandConfig is a price range for products whose title names a keyword.
type BandConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Min      float64  `yaml:"min"`
	Max      float64  `yaml:"max"`
}

// DefaultBands puts category bands ahead of the accessory band.
var DefaultBands = []BandConfig{
	{
		Name:     "storage",
		Keywords: []string{"ssd", "hdd", "nvme", "disco duro", "hard drive", "m.2", "sata"},
		Min:      80,
		Max:      400,
	},
	{
		Name:     "accessory",
		Keywords: []string{"cable", "funda", "adaptador", "protector", "case", "cover", "soporte"},
		Min:      0.01,
		Max:      200,
	},
}

// WithDefaults returns a copy of the config with default values applied for zero-value fields.
func (c ValidatorConfig) WithDefaults() ValidatorConfig {
	if c.MinPrice <= 0 {
		c.MinPrice = defaultMinPrice
	}
	if c.MaxPrice <= 0 {
		c.MaxPrice = defaultMaxPrice
	}
	if c.Bands == nil {
		c.Bands = DefaultBands
	}
	return c
}

// Validate checks that every range is ordered.
func (c ValidatorConfig) Validate() error {
	if c.MinPrice > c.MaxPrice {
		return fmt.Errorf("min_price %v exceeds max_price %v", c.MinPrice, c.MaxPrice)
	}
	for _, b := range c.Bands {
		if b.Min > b.Max {
			return fmt.Errorf("band %s: min %v exceeds max %v", b.Name, b.Min, b.Max)
		}
		if len(b.Keywords) == 0 {
			return fmt.Errorf("band %s: no keywords", b.Name)
		}
	}
	return nil
}
