// Package history keeps the bounded per-product price history: one entry per
// product per day, newest thirty days retained.
package history

import (
	"slices"
	"strings"

	"github.com/tinchodeluca/scann-url/internal/domain"
)

// Merge folds obs into h for the calendar day today and returns the new
// history. An observation without a price leaves the history unchanged. A
// second observation on the same day replaces that day's price and
// timestamp. Duplicate days already in h collapse to their last entry. The result is date ascending and holds at most
// domain.HistoryCapacity entries. h is never modified.
func Merge(h domain.ProductHistory, today string, obs domain.Observation) domain.ProductHistory {
	if obs.CurrentPrice == nil {
		return h
	}

	entry := domain.HistoryEntry{
		Date:       today,
		ObservedAt: obs.ObservedAt,
		Price:      *obs.CurrentPrice,
	}

	out := make(domain.ProductHistory, 0, len(h)+1)
	out = append(out, h...)
	slices.SortStableFunc(out, func(a, b domain.HistoryEntry) int {
		return strings.Compare(a.Date, b.Date)
	})
	out = dedupeDays(out)

	idx, found := slices.BinarySearchFunc(out, today, func(e domain.HistoryEntry, day string) int {
		return strings.Compare(e.Date, day)
	})
	if found {
		out[idx] = entry
	} else {
		out = slices.Insert(out, idx, entry)
	}

	return Trim(out, domain.HistoryCapacity)
}

// dedupeDays collapses entries sharing a date in a date ascending history,
// keeping the last of each run.
func dedupeDays(h domain.ProductHistory) domain.ProductHistory {
	out := h[:0]
	for _, e := range h {
		if n := len(out); n > 0 && out[n-1].Date == e.Date {
			out[n-1] = e
			continue
		}
		out = append(out, e)
	}
	return out
}

// Trim keeps the newest capacity entries of a date ascending history.
func Trim(h domain.ProductHistory, capacity int) domain.ProductHistory {
	if len(h) <= capacity {
		return h
	}
	return slices.Clone(h[len(h)-capacity:])
}
