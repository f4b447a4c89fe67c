package history

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tinchodeluca/scann-url/internal/domain"
)

// SummarySheet is the first sheet of an exported workbook.
const SummarySheet = "Summary"

// maxSheetName is Excel's sheet name length limit.
const maxSheetName = 31

var (
	summaryHeaders = []any{"product", "sheet", "entries", "first_date", "last_date", "last_price", "min_price", "max_price"}
	entryHeaders   = []any{"date", "datetime", "price"}
)

// Export writes histories as an xlsx workbook: a summary sheet followed by
// one sheet per product in name order.
func Export(w io.Writer, histories map[string]domain.ProductHistory) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	if err := setRow(f, SummarySheet, 1, summaryHeaders); err != nil {
		return err
	}

	used := map[string]struct{}{strings.ToLower(SummarySheet): {}}
	for i, name := range slices.Sorted(maps.Keys(histories)) {
		h := histories[name]
		sheet := uniqueSheetName(name, used)

		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if err := writeEntries(f, sheet, h); err != nil {
			return err
		}
		if err := setRow(f, SummarySheet, i+2, summaryRow(name, sheet, h)); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeEntries(f *excelize.File, sheet string, h domain.ProductHistory) error {
	if err := setRow(f, sheet, 1, entryHeaders); err != nil {
		return err
	}
	for i, e := range h {
		row := []any{e.Date, e.ObservedAt.Format("2006-01-02 15:04:05"), e.Price.InexactFloat64()}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func summaryRow(name, sheet string, h domain.ProductHistory) []any {
	row := []any{name, sheet, len(h)}
	if len(h) == 0 {
		return row
	}

	lo, hi := h[0].Price, h[0].Price
	for _, e := range h[1:] {
		if e.Price.LessThan(lo) {
			lo = e.Price
		}
		if e.Price.GreaterThan(hi) {
			hi = e.Price
		}
	}
	last := h[len(h)-1]
	return append(row, h[0].Date, last.Date, last.Price.InexactFloat64(), lo.InexactFloat64(), hi.InexactFloat64())
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err = f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// uniqueSheetName makes a valid sheet name for product that is not in used.
func uniqueSheetName(product string, used map[string]struct{}) string {
	base := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(product))
	base = strings.Trim(base, "'")
	if base == "" {
		base = "product"
	}

	name := strings.TrimSpace(truncateRunes(base, maxSheetName))
	for n := 2; ; n++ {
		if _, taken := used[strings.ToLower(name)]; !taken {
			break
		}
		suffix := "~" + strconv.Itoa(n)
		name = strings.TrimSpace(truncateRunes(base, maxSheetName-len(suffix))) + suffix
	}
	used[strings.ToLower(name)] = struct{}{}
	return name
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
