package history_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinchodeluca/scann-url/internal/history"
	"github.com/tinchodeluca/scann-url/internal/logger"
)

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "price-history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	svc := history.NewService(history.NewFileStore(path, logger.NewNop()), logger.NewNop())
	require.NoError(t, svc.Record(context.Background(), observation("129.99", baseDay)))

	all, err := svc.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Len(t, all["Drive"], 1)
	assert.Equal(t, "2026-03-01", all["Drive"][0].Date)
}

func TestFileStore_MissingFileAndDocumentShape(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "price-history.json")
	store := history.NewFileStore(path, logger.NewNop())

	got, err := store.Get(context.Background(), "Drive")
	require.NoError(t, err)
	assert.Empty(t, got)

	svc := history.NewService(store, logger.NewNop())
	require.NoError(t, svc.Record(context.Background(), observation("129.99", baseDay)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]map[string][]map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	entry := doc["history"]["Drive"][0]
	assert.Equal(t, "2026-03-01", entry["date"])
	assert.InDelta(t, 129.99, entry["price"], 0.0001)
	assert.Contains(t, entry, "datetime")
}

func TestFileStore_ObservationWithoutPriceIsNotWritten(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "price-history.json")
	svc := history.NewService(history.NewFileStore(path, logger.NewNop()), logger.NewNop())

	require.NoError(t, svc.Record(context.Background(), observation("", baseDay)))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestService_ConcurrentRecordsDoNotLoseUpdates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "price-history.json")
	svc := history.NewService(history.NewFileStore(path, logger.NewNop()), logger.NewNop())

	const days = 20
	var wg sync.WaitGroup
	for i := range days {
		wg.Go(func() {
			assert.NoError(t, svc.Record(context.Background(), observation("100", baseDay.AddDate(0, 0, i))))
		})
	}
	wg.Wait()

	h, err := svc.Get(context.Background(), "Drive")
	require.NoError(t, err)
	assert.Len(t, h, days)
}
