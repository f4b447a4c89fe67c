package scheduler

import "fmt"

const defaultCron = "0 */6 * * *"

// Config configures the watch loop.
type Config struct {
	// Cron is a five-field expression or a descriptor such as @hourly.
	Cron string `env:"SCHEDULE_CRON" yaml:"cron"`
	// RunOnStart triggers one run before waiting for the first tick.
	RunOnStart bool `env:"SCHEDULE_RUN_ON_START" yaml:"run_on_start"`
}

// WithDefaults returns a copy of the config with default values applied for zero-value fields.
func (c Config) WithDefaults() Config {
	if c.Cron == "" {
		c.Cron = defaultCron
	}
	return c
}

// Validate checks that the cron expression parses.
func (c Config) Validate() error {
	if _, err := parser.Parse(c.Cron); err != nil {
		return fmt.Errorf("invalid cron %q: %w", c.Cron, err)
	}
	return nil
}
