package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tinchodeluca/scann-url/internal/domain"
	"github.com/tinchodeluca/scann-url/internal/logger"
)

// connectionTimeout bounds the initial ping.
const connectionTimeout = 5 * time.Second

// ErrTxConflict is returned when a concurrent writer kept changing the key.
var ErrTxConflict = errors.New("history update conflicted too many times")

// RedisStore keeps each product's history as a JSON array under
// <prefix><product name>.
type RedisStore struct {
	client     redis.UniversalClient
	prefix     string
	maxRetries int
	logger     logger.Logger
}

// NewRedisClient connects to redis and verifies the connection.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewRedisStore wraps client.
func NewRedisStore(client redis.UniversalClient, cfg RedisConfig, log logger.Logger) *RedisStore {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultRedisKeyPrefix
	}
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = defaultMaxTxRetries
	}
	return &RedisStore{client: client, prefix: cfg.KeyPrefix, maxRetries: cfg.MaxTxRetries, logger: log}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

// Update implements Store with an optimistic WATCH/MULTI transaction.
func (s *RedisStore) Update(ctx context.Context, name string, fn UpdateFunc) error {
	key := s.key(name)

	txf := func(tx *redis.Tx) error {
		current, err := s.read(ctx, tx, key)
		if err != nil {
			return err
		}

		data, err := json.Marshal(fn(current))
		if err != nil {
			return fmt.Errorf("encode history: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for range s.maxRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("update history %s: %w", name, err)
		}
		return nil
	}
	return fmt.Errorf("update history %s: %w", name, ErrTxConflict)
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, name string) (domain.ProductHistory, error) {
	return s.read(ctx, s.client, s.key(name))
}

// All implements Store.
func (s *RedisStore) All(ctx context.Context) (map[string]domain.ProductHistory, error) {
	out := make(map[string]domain.ProductHistory)

	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		h, err := s.read(ctx, s.client, key)
		if err != nil {
			return nil, err
		}
		out[strings.TrimPrefix(key, s.prefix)] = h
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan history keys: %w", err)
	}
	return out, nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// stringGetter is satisfied by both the client and a watched transaction.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) read(ctx context.Context, c stringGetter, key string) (domain.ProductHistory, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	var h domain.ProductHistory
	if unmarshalErr := json.Unmarshal(data, &h); unmarshalErr != nil {
		s.logger.Warn("History entry is corrupt, starting from empty",
			logger.String("key", key),
			logger.Error(unmarshalErr),
		)
		return nil, nil
	}
	return h, nil
}
