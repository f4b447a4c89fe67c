package bootstrap

import (
	"fmt"

	"github.com/tinchodeluca/scann-url/internal/config"
	"github.com/tinchodeluca/scann-url/internal/logger"
)

// LoadConfig loads the configuration. Debug forces debug logging with the
// console encoder.
func LoadConfig(path string, debug bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = logger.FormatConsole
		cfg.Logging.Development = true
		cfg.Server.Debug = true
	}
	return cfg, nil
}

// NewLogger creates the application logger.
func NewLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", "pricewatch")), nil
}
