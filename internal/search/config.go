package search

import (
	"errors"
	"strings"
)

// Default configuration values.
const (
	defaultAddress     = "http://localhost:9200"
	defaultIndexPrefix = "pricewatch"
	defaultMaxRetries  = 3
)

// Config configures the optional observation index.
type Config struct {
	Enabled     bool     `env:"ELASTICSEARCH_ENABLED"      yaml:"enabled"`
	Addresses   []string `env:"ELASTICSEARCH_URL"          yaml:"addresses"`
	Username    string   `env:"ELASTICSEARCH_USERNAME"     yaml:"username"`
	Password    string   `env:"ELASTICSEARCH_PASSWORD"     yaml:"password"` //nolint:gosec // ES credential
	IndexPrefix string   `env:"ELASTICSEARCH_INDEX_PREFIX" yaml:"index_prefix"`
	MaxRetries  int      `yaml:"max_retries"`
}

// WithDefaults returns a copy of the config with default values applied for zero-value fields.
func (c Config) WithDefaults() Config {
	if len(c.Addresses) == 0 {
		c.Addresses = []string{defaultAddress}
	}
	if c.IndexPrefix == "" {
		c.IndexPrefix = defaultIndexPrefix
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	return c
}

// Validate checks the config when indexing is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if len(c.Addresses) == 0 {
		return errors.New("at least one address is required")
	}
	for _, addr := range c.Addresses {
		if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
			return errors.New("address must start with http:// or https://: " + addr)
		}
	}
	if strings.TrimSpace(c.IndexPrefix) == "" {
		return errors.New("index_prefix is required")
	}
	return nil
}

// IndexName returns the observations index.
func (c Config) IndexName() string {
	return c.IndexPrefix + "-observations"
}
