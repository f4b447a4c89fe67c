package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/tinchodeluca/scann-url/internal/domain"
)

// UpdateFunc computes a product's new history from its current one.
type UpdateFunc func(domain.ProductHistory) domain.ProductHistory

// Store persists product histories.
type Store interface {
	// Update applies fn to the stored history of name and persists the result.
	Update(ctx context.Context, name string, fn UpdateFunc) error
	// Get returns the history of name, empty when unknown.
	Get(ctx context.Context, name string) (domain.ProductHistory, error)
	// All returns every product's history keyed by name.
	All(ctx context.Context) (map[string]domain.ProductHistory, error)
	// Close releases backend resources.
	Close() error
}

// Backend names.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// ErrUnknownBackend is returned for an unsupported storage.backend value.
var ErrUnknownBackend = errors.New("unknown history backend")

func unknownBackend(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}
