package dashboard_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinchodeluca/scann-url/internal/dashboard"
	"github.com/tinchodeluca/scann-url/internal/domain"
)

func TestSnapshotStore_WriteRead(t *testing.T) {
	t.Parallel()

	store := dashboard.NewSnapshotStore(filepath.Join(t.TempDir(), "data", "current-prices.json"))

	_, err := store.Read()
	require.ErrorIs(t, err, dashboard.ErrNoSnapshot)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	price := decimal.RequireFromString("129.99")
	product := domain.Product{Name: "SSD", URL: "https://www.amazon.es/dp/B0BHJJ9Y77", TargetPrice: decimal.NewFromInt(150)}
	snap := domain.NewSnapshot([]domain.Observation{domain.NewObservation(product, &price, now)}, now)

	require.NoError(t, store.Write(snap))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"last_update", "products", "alerts_count", "total_products", "total_savings"} {
		assert.Contains(t, decoded, key)
	}
	assert.InDelta(t, 20.01, decoded["total_savings"], 0.0001)

	got, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, 1, got.AlertsCount)
	require.Len(t, got.Products, 1)
	assert.True(t, got.Products[0].CurrentPrice.Equal(price))
}

func TestConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	cfg := dashboard.Config{}.WithDefaults()
	assert.Equal(t, "docs", cfg.Dir)
	assert.Equal(t, "docs/data/current-prices.json", cfg.SnapshotFile)
}
