package cmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tinchodeluca/scann-url/cmd"
	"github.com/tinchodeluca/scann-url/internal/domain"
	"github.com/tinchodeluca/scann-url/internal/history"
	"github.com/tinchodeluca/scann-url/internal/logger"
)

type workspace struct {
	dir      string
	config   string
	products string
	history  string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("CONFIG_PATH", "")

	ws := workspace{
		dir:      dir,
		config:   filepath.Join(dir, "config.yml"),
		products: filepath.Join(dir, "products.json"),
		history:  filepath.Join(dir, "price-history.json"),
	}
	require.NoError(t, os.WriteFile(ws.config, []byte(`
logging:
  level: error
monitor:
  products_file: `+ws.products+`
storage:
  file: `+ws.history+`
dashboard:
  dir: `+dir+`
  snapshot_file: `+filepath.Join(dir, "current-prices.json")+`
`), 0o600))
	return ws
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := cmd.NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pricewatch version dev")
}

func TestProductsList(t *testing.T) {
	ws := newWorkspace(t)
	require.NoError(t, os.WriteFile(ws.products, []byte(`{"products":[
		{"name":"Samsung SSD","url":"https://www.amazon.es/Samsung/dp/B0BHJJ9Y77?tag=x","target_price":150},
		{"name":"","url":"https://shop.example/cable","target_price":"9.5"},
		{"name":"Broken","url":"","target_price":10}
	]}`), 0o600))

	out, err := run(t, "--config", ws.config, "products", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Samsung SSD")
	assert.Contains(t, out, "https://www.amazon.es/dp/B0BHJJ9Y77")
	assert.Contains(t, out, "150.00")
	assert.Contains(t, out, domain.DefaultProductName)
	assert.Contains(t, out, "9.50")
	assert.NotContains(t, out, "Broken")
}

func TestProductsList_MissingCatalog(t *testing.T) {
	ws := newWorkspace(t)

	out, err := run(t, "--config", ws.config, "products", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No products in")
}

func TestCheck_EmptyCatalog(t *testing.T) {
	ws := newWorkspace(t)

	_, err := run(t, "--config", ws.config, "check")
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(ws.dir, "current-prices.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestConfigPathFromEnvironment(t *testing.T) {
	ws := newWorkspace(t)
	t.Setenv("CONFIG_PATH", ws.config)
	require.NoError(t, os.WriteFile(ws.products, []byte(`[{"name":"Env","url":"https://shop.example/e","target_price":1}]`), 0o600))

	out, err := run(t, "products", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Env")
}

func TestInvalidConfig(t *testing.T) {
	ws := newWorkspace(t)
	require.NoError(t, os.WriteFile(ws.config, []byte("storage:\n  backend: mongo\n"), 0o600))

	_, err := run(t, "--config", ws.config, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage")
}

func seedHistory(t *testing.T, path string) {
	t.Helper()

	svc := history.NewService(history.NewFileStore(path, logger.NewNop()), logger.NewNop())
	p := domain.Product{Name: "SSD", URL: "https://shop.example/ssd", TargetPrice: decimal.RequireFromString("150")}
	for i, raw := range []string{"139.99", "129.99"} {
		price := decimal.RequireFromString(raw)
		at := time.Date(2026, 3, 1+i, 9, 0, 0, 0, time.UTC)
		require.NoError(t, svc.Record(context.Background(), domain.NewObservation(p, &price, at)))
	}
}

func TestHistoryShow(t *testing.T) {
	ws := newWorkspace(t)
	seedHistory(t, ws.history)

	out, err := run(t, "--config", ws.config, "history", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "SSD")
	assert.Contains(t, out, "129.99 (2026-03-02)")
	assert.Contains(t, out, "139.99")

	out, err = run(t, "--config", ws.config, "history", "show", "SSD")
	require.NoError(t, err)
	assert.Contains(t, out, "2026-03-01")
	assert.Contains(t, out, "2026-03-02 09:00:00")

	_, err = run(t, "--config", ws.config, "history", "show", "Unknown")
	require.Error(t, err)
}

func TestHistoryExport(t *testing.T) {
	ws := newWorkspace(t)
	seedHistory(t, ws.history)
	out := filepath.Join(ws.dir, "prices.xlsx")

	stdout, err := run(t, "--config", ws.config, "history", "export", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Exported 1 products")

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	assert.Contains(t, f.GetSheetList(), history.SummarySheet)
	assert.Contains(t, f.GetSheetList(), "SSD")
}
