package config

import (
	"fmt"

	"github.com/tinchodeluca/scann-url/internal/archive"
	"github.com/tinchodeluca/scann-url/internal/dashboard"
	"github.com/tinchodeluca/scann-url/internal/extract"
	"github.com/tinchodeluca/scann-url/internal/fetcher"
	"github.com/tinchodeluca/scann-url/internal/history"
	"github.com/tinchodeluca/scann-url/internal/logger"
	"github.com/tinchodeluca/scann-url/internal/monitor"
	"github.com/tinchodeluca/scann-url/internal/notify"
	"github.com/tinchodeluca/scann-url/internal/scheduler"
	"github.com/tinchodeluca/scann-url/internal/search"
	"github.com/tinchodeluca/scann-url/internal/server"
)

// DefaultPath is the config file read when neither --config nor CONFIG_PATH is given.
const DefaultPath = "config.yml"

// Config is the full application configuration. Each section belongs to the
// package that consumes it.
type Config struct {
	Logging       logger.Config           `yaml:"logging"`
	Monitor       monitor.Config          `yaml:"monitor"`
	Fetcher       fetcher.Config          `yaml:"fetcher"`
	Extract       extract.Config          `yaml:"extract"`
	Validator     extract.ValidatorConfig `yaml:"validator"`
	Storage       history.Config          `yaml:"storage"`
	Dashboard     dashboard.Config        `yaml:"dashboard"`
	Notify        notify.Config           `yaml:"notify"`
	Elasticsearch search.Config           `yaml:"elasticsearch"`
	Archive       archive.Config          `yaml:"archive"`
	Server        server.Config           `yaml:"server"`
	Schedule      scheduler.Config        `yaml:"schedule"`
}

// Load reads the configuration at path, applies defaults and validates it.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile[Config](path)
	if err != nil {
		return nil, err
	}

	cfg.SetDefaults()

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("invalid config: %w", validateErr)
	}
	return cfg, nil
}

// SetDefaults fills every zero-valued setting.
func (c *Config) SetDefaults() {
	c.Logging.SetDefaults()
	c.Monitor = c.Monitor.WithDefaults()
	c.Fetcher = c.Fetcher.WithDefaults()
	c.Extract = c.Extract.WithDefaults()
	c.Validator = c.Validator.WithDefaults()
	c.Storage = c.Storage.WithDefaults()
	c.Dashboard = c.Dashboard.WithDefaults()
	c.Notify = c.Notify.WithDefaults()
	c.Elasticsearch = c.Elasticsearch.WithDefaults()
	c.Archive = c.Archive.WithDefaults()
	c.Server = c.Server.WithDefaults()
	c.Schedule = c.Schedule.WithDefaults()
}

// Validate checks every section, reporting the first problem found.
func (c *Config) Validate() error {
	if err := ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := ValidateLogFormat(c.Logging.Format); err != nil {
		return err
	}

	checks := []struct {
		section string
		check   func() error
	}{
		{"monitor", c.Monitor.Validate},
		{"fetcher", c.Fetcher.Validate},
		{"extract", c.Extract.Validate},
		{"validator", c.Validator.Validate},
		{"storage", c.Storage.Validate},
		{"elasticsearch", c.Elasticsearch.Validate},
		{"archive", c.Archive.Validate},
		{"server", c.Server.Validate},
		{"schedule", c.Schedule.Validate},
	}
	for _, item := range checks {
		if err := item.check(); err != nil {
			return &ValidationError{Field: item.section, Message: err.Error()}
		}
	}
	return nil
}
