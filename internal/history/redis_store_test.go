package history_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinchodeluca/scann-url/internal/domain"
	"github.com/tinchodeluca/scann-url/internal/history"
	"github.com/tinchodeluca/scann-url/internal/logger"
)

func newRedisStore(t *testing.T) (*history.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := history.NewRedisStore(client, history.RedisConfig{}, logger.NewNop())
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_UpdateGetAll(t *testing.T) {
	t.Parallel()

	store, mr := newRedisStore(t)
	svc := history.NewService(store, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, observation("129.99", baseDay)))
	require.NoError(t, svc.Record(ctx, observation("119.99", baseDay.AddDate(0, 0, 1))))

	assert.True(t, mr.Exists("pricewatch:history:Drive"))

	h, err := store.Get(ctx, "Drive")
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, "119.99", h[1].Price.String())

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.ProductHistory{"Drive": h}, all)
}

func TestRedisStore_UnknownAndCorruptKeys(t *testing.T) {
	t.Parallel()

	store, mr := newRedisStore(t)
	ctx := context.Background()

	h, err := store.Get(ctx, "Missing")
	require.NoError(t, err)
	assert.Empty(t, h)

	require.NoError(t, mr.Set("pricewatch:history:Drive", "{broken"))
	h, err = store.Get(ctx, "Drive")
	require.NoError(t, err)
	assert.Empty(t, h)

	require.NoError(t, history.NewService(store, logger.NewNop()).Record(ctx, observation("129.99", baseDay)))
	h, err = store.Get(ctx, "Drive")
	require.NoError(t, err)
	assert.Len(t, h, 1)
}
