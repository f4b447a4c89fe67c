package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinchodeluca/scann-url/internal/bootstrap"
	"github.com/tinchodeluca/scann-url/internal/logger"
)

func TestNewApp_FileBackendWithEmptyCatalog(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
monitor:
  products_file: `+filepath.Join(dir, "products.json")+`
storage:
  file: `+filepath.Join(dir, "history.json")+`
dashboard:
  snapshot_file: `+filepath.Join(dir, "current-prices.json")+`
`), 0o600))

	cfg, err := bootstrap.LoadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)

	app, err := bootstrap.NewApp(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	report, err := app.Runner.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Products)

	all, err := app.History.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNewApp_UnknownBackend(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))

	cfg, err := bootstrap.LoadConfig(filepath.Join(dir, "config.yml"), false)
	require.NoError(t, err)
	cfg.Storage.Backend = "mongo"

	_, err = bootstrap.NewApp(context.Background(), cfg, logger.NewNop())
	require.Error(t, err)
}
