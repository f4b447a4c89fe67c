package archive

import "errors"

const defaultBucket = "pricewatch-pages"

// Config configures the optional page archive.
type Config struct {
	Enabled   bool   `env:"MINIO_ENABLED"    yaml:"enabled"`
	Endpoint  string `env:"MINIO_ENDPOINT"   yaml:"endpoint"`
	AccessKey string `env:"MINIO_ACCESS_KEY" yaml:"access_key"`
	SecretKey string `env:"MINIO_SECRET_KEY" yaml:"secret_key"` //nolint:gosec // MinIO credential
	UseSSL    bool   `env:"MINIO_USE_SSL"    yaml:"use_ssl"`
	Bucket    string `env:"MINIO_BUCKET"     yaml:"bucket"`
	Region    string `env:"MINIO_REGION"     yaml:"region"`
}

// WithDefaults returns a copy of the config with default values applied for zero-value fields.
func (c Config) WithDefaults() Config {
	if c.Bucket == "" {
		c.Bucket = defaultBucket
	}
	return c
}

// Validate checks the config when archiving is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if c.Bucket == "" {
		return errors.New("bucket is required")
	}
	return nil
}
