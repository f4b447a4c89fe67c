package monitor

import (
	"errors"
	"time"
)

// Default configuration values.
const (
	defaultProductsFile = "config.json"
	defaultDelay        = 3 * time.Second
	defaultConcurrency  = 1
)

// Config controls one monitor run.
type Config struct {
	// ProductsFile is the product catalog (JSON or YAML).
	ProductsFile string `env:"PRODUCTS_FILE" yaml:"products_file"`
	// Delay is the minimum interval between two product fetches.
	Delay time.Duration `env:"MONITOR_DELAY" yaml:"delay"`
	// Concurrency bounds the products checked at once.
	Concurrency int `env:"MONITOR_CONCURRENCY" yaml:"concurrency"`
}

// WithDefaults returns a copy of the config with default values applied for zero-value fields.
func (c Config) WithDefaults() Config {
	if c.ProductsFile == "" {
		c.ProductsFile = defaultProductsFile
	}
	if c.Delay == 0 {
		c.Delay = defaultDelay
	}
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	return c
}

// Validate checks the config.
func (c Config) Validate() error {
	if c.ProductsFile == "" {
		return errors.New("products_file is required")
	}
	if c.Delay < 0 {
		return errors.New("delay must not be negative")
	}
	if c.Concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}
	return nil
}
