package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryCapacity is the retention window: the number of most recent daily
// entries kept per product.
const HistoryCapacity = 30

// DateLayout is the calendar-day format used as the history key.
const DateLayout = "2006-01-02"

// HistoryEntry is the price recorded for one product on one day.
type HistoryEntry struct {
	Date       string          `json:"date"`
	ObservedAt time.Time       `json:"datetime"`
	Price      decimal.Decimal `json:"price"`
}

// ProductHistory is ordered by date ascending and bounded by HistoryCapacity.
type ProductHistory []HistoryEntry

// Latest returns the most recent entry.
func (h ProductHistory) Latest() (HistoryEntry, bool) {
	if len(h) == 0 {
		return HistoryEntry{}, false
	}
	return h[len(h)-1], true
}

// Day formats t as a calendar day in t's location.
func Day(t time.Time) string {
	return t.Format(DateLayout)
}

// HistoryDocument is the on-disk layout of the price history file.
type HistoryDocument struct {
	History map[string]ProductHistory `json:"history"`
}

// NewHistoryDocument returns an empty document.
func NewHistoryDocument() HistoryDocument {
	return HistoryDocument{History: make(map[string]ProductHistory)}
}
