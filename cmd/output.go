package cmd

import (
	"io"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"

	"github.com/tinchodeluca/scann-url/internal/domain"
	"github.com/tinchodeluca/scann-url/internal/monitor"
)

const noPrice = "-"

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func moneyPtr(d *decimal.Decimal) string {
	if d == nil {
		return noPrice
	}
	return money(*d)
}

// renderReport prints one row per observation and the run totals.
func renderReport(w io.Writer, report monitor.RunReport) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Product", "Price", "Target", "Alert", "Strategy / Reason"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})

	for _, o := range report.Observations {
		alert := ""
		if o.IsAlert {
			alert = "yes"
		}
		detail := o.Strategy
		if !o.HasPrice() {
			detail = o.Reason
		}
		t.AppendRow(table.Row{o.ProductName, moneyPtr(o.CurrentPrice), money(o.TargetPrice), alert, detail})
	}

	t.AppendFooter(table.Row{
		"Total", report.Products, "", report.Alerts, "savings " + money(report.TotalSavings),
	})
	t.Render()
}

// renderProducts prints the catalog.
func renderProducts(w io.Writer, products []domain.Product, canonical func(string) string) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Name", "Target", "URL"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	for _, p := range products {
		t.AppendRow(table.Row{p.Name, money(p.TargetPrice), canonical(p.URL)})
	}
	t.AppendFooter(table.Row{"Products", len(products), ""})
	t.Render()
}

// renderHistory prints one product's entries, oldest first.
func renderHistory(w io.Writer, name string, h domain.ProductHistory) {
	t := newTable(w)
	t.SetTitle(name)
	t.AppendHeader(table.Row{"Date", "Checked at", "Price"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	for _, e := range h {
		t.AppendRow(table.Row{e.Date, e.ObservedAt.Format("2006-01-02 15:04:05"), money(e.Price)})
	}
	t.Render()
}

// renderHistorySummary prints one line per product with its range.
func renderHistorySummary(w io.Writer, all map[string]domain.ProductHistory) {
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	slices.Sort(names)

	t := newTable(w)
	t.AppendHeader(table.Row{"Product", "Days", "Latest", "Min", "Max"})
	for _, name := range names {
		h := all[name]
		if len(h) == 0 {
			continue
		}
		lo, hi := h[0].Price, h[0].Price
		for _, e := range h[1:] {
			lo = decimal.Min(lo, e.Price)
			hi = decimal.Max(hi, e.Price)
		}
		latest, _ := h.Latest()
		t.AppendRow(table.Row{name, len(h), money(latest.Price) + " (" + latest.Date + ")", money(lo), money(hi)})
	}
	t.Render()
}
