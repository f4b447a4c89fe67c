package fetcher

import (
	"errors"
	"time"
)

// Default configuration values.
const (
	defaultRequestTimeout = 20 * time.Second
	defaultAcceptLanguage = "es-ES,es;q=0.9,en;q=0.8"
	defaultMaxBodySize    = 10 * 1024 * 1024
	defaultMaxAttempts    = 1
	defaultRetryBackoff   = 2 * time.Second
)

// Config holds product page fetching settings.
type Config struct {
	RequestTimeout   time.Duration `env:"FETCHER_REQUEST_TIMEOUT"     yaml:"request_timeout"`
	UserAgent        string        `env:"FETCHER_USER_AGENT"          yaml:"user_agent"`
	RandomUserAgent  bool          `env:"FETCHER_RANDOM_USER_AGENT"   yaml:"random_user_agent"`
	AcceptLanguage   string        `env:"FETCHER_ACCEPT_LANGUAGE"     yaml:"accept_language"`
	MaxBodySize      int           `env:"FETCHER_MAX_BODY_SIZE"       yaml:"max_body_size"`
	RespectRobotsTxt bool          `env:"FETCHER_RESPECT_ROBOTS_TXT"  yaml:"respect_robots_txt"`
	MaxAttempts      int           `env:"FETCHER_MAX_ATTEMPTS"        yaml:"max_attempts"`
	RetryBackoff     time.Duration `env:"FETCHER_RETRY_BACKOFF"       yaml:"retry_backoff"`
}

// WithDefaults returns a copy of the config with default values applied for zero-value fields.
// An empty UserAgent turns on rotation through the built-in browser list.
func (c Config) WithDefaults() Config {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.UserAgent == "" {
		c.RandomUserAgent = true
	}
	if c.AcceptLanguage == "" {
		c.AcceptLanguage = defaultAcceptLanguage
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = defaultMaxBodySize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaultRetryBackoff
	}
	return c
}

// Validate checks the config after defaults are applied.
func (c Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if c.MaxAttempts < 1 {
		return errors.New("max_attempts must be at least 1")
	}
	return nil
}
