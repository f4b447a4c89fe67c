package history

import (
	"context"

	"github.com/tinchodeluca/scann-url/internal/logger"
)

// NewStore opens the backend selected by cfg.Backend.
func NewStore(ctx context.Context, cfg Config, log logger.Logger) (Store, error) {
	cfg = cfg.WithDefaults()

	switch cfg.Backend {
	case BackendFile:
		return NewFileStore(cfg.File, log), nil
	case BackendRedis:
		client, err := NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Redis, log), nil
	case BackendPostgres:
		db, err := NewPostgresDB(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		store := NewPostgresStore(db)
		if schemaErr := store.EnsureSchema(ctx); schemaErr != nil {
			_ = db.Close()
			return nil, schemaErr
		}
		return store, nil
	default:
		return nil, unknownBackend(cfg.Backend)
	}
}
