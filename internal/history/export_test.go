package history_test

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tinchodeluca/scann-url/internal/domain"
	"github.com/tinchodeluca/scann-url/internal/history"
)

func TestExport(t *testing.T) {
	t.Parallel()

	histories := map[string]domain.ProductHistory{
		"Samsung 990 PRO SSD 1TB / NVMe M.2": {
			{Date: "2026-03-01", ObservedAt: baseDay, Price: decimal.RequireFromString("129.99")},
			{Date: "2026-03-02", ObservedAt: baseDay.AddDate(0, 0, 1), Price: decimal.RequireFromString("119.99")},
		},
		"Cable": {
			{Date: "2026-03-01", ObservedAt: baseDay, Price: decimal.RequireFromString("9.99")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, history.Export(&buf, histories))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	sheets := f.GetSheetList()
	require.Len(t, sheets, 3)
	assert.Equal(t, history.SummarySheet, sheets[0])
	assert.Equal(t, "Cable", sheets[1])
	assert.Equal(t, "Samsung 990 PRO SSD 1TB _ NVMe", sheets[2])

	rows, err := f.GetRows(history.SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "product", rows[0][0])
	assert.Equal(t, []string{"Samsung 990 PRO SSD 1TB / NVMe M.2", sheets[2], "2", "2026-03-01", "2026-03-02", "119.99", "119.99", "129.99"}, rows[2])

	rows, err = f.GetRows(sheets[2])
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"date", "datetime", "price"}, rows[0])
	assert.Equal(t, "2026-03-02", rows[2][0])
}
