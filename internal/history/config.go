package history

import (
	"errors"
	"time"
)

// Default configuration values.
const (
	defaultFile           = "docs/data/price-history.json"
	defaultRedisAddr      = "localhost:6379"
	defaultRedisKeyPrefix = "pricewatch:history:"
	defaultMaxOpenConns   = 5
	defaultConnMaxLife    = 5 * time.Minute
	defaultMaxTxRetries   = 5
)

// Config selects and configures the history backend.
type Config struct {
	Backend  string         `env:"STORAGE_BACKEND" yaml:"backend"`
	File     string         `env:"HISTORY_FILE"    yaml:"file"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr         string `env:"REDIS_ADDR"     yaml:"addr"`
	Password     string `env:"REDIS_PASSWORD" yaml:"password"`
	DB           int    `env:"REDIS_DB"       yaml:"db"`
	KeyPrefix    string `yaml:"key_prefix"`
	MaxTxRetries int    `yaml:"max_tx_retries"`
}

// PostgresConfig configures the postgres backend.
type PostgresConfig struct {
	DSN             string        `env:"DATABASE_URL" yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// WithDefaults returns a copy of the config with default values applied for zero-value fields.
func (c Config) WithDefaults() Config {
	if c.Backend == "" {
		c.Backend = BackendFile
	}
	if c.File == "" {
		c.File = defaultFile
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaultRedisAddr
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = defaultRedisKeyPrefix
	}
	if c.Redis.MaxTxRetries <= 0 {
		c.Redis.MaxTxRetries = defaultMaxTxRetries
	}
	if c.Postgres.MaxOpenConns <= 0 {
		c.Postgres.MaxOpenConns = defaultMaxOpenConns
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		c.Postgres.ConnMaxLifetime = defaultConnMaxLife
	}
	return c
}

// Validate checks the selected backend's settings.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile:
		if c.File == "" {
			return errors.New("file is required for the file backend")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis backend")
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required for the postgres backend")
		}
	default:
		return unknownBackend(c.Backend)
	}
	return nil
}
