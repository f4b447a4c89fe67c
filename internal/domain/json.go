package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Amounts are written as JSON numbers so dashboards can do arithmetic on
// them. Reading accepts both numbers and quoted strings.

// AmountJSON renders d as a JSON number.
func AmountJSON(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// OptionalAmountJSON renders d as a JSON number, or null when d is nil.
func OptionalAmountJSON(d *decimal.Decimal) *json.Number {
	if d == nil {
		return nil
	}
	n := AmountJSON(*d)
	return &n
}

// MarshalJSON implements json.Marshaler.
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		TargetPrice json.Number `json:"target_price"`
	}{product(p), AmountJSON(p.TargetPrice)})
}

// MarshalJSON implements json.Marshaler.
func (o Observation) MarshalJSON() ([]byte, error) {
	type observation Observation
	return json.Marshal(struct {
		observation
		CurrentPrice *json.Number `json:"current_price"`
		TargetPrice  json.Number  `json:"target_price"`
	}{observation(o), OptionalAmountJSON(o.CurrentPrice), AmountJSON(o.TargetPrice)})
}

// MarshalJSON implements json.Marshaler.
func (e HistoryEntry) MarshalJSON() ([]byte, error) {
	type entry HistoryEntry
	return json.Marshal(struct {
		entry
		Price json.Number `json:"price"`
	}{entry(e), AmountJSON(e.Price)})
}

// MarshalJSON implements json.Marshaler.
func (s ProductStatus) MarshalJSON() ([]byte, error) {
	type status ProductStatus
	return json.Marshal(struct {
		status
		CurrentPrice *json.Number `json:"current_price"`
		TargetPrice  json.Number  `json:"target_price"`
	}{status(s), OptionalAmountJSON(s.CurrentPrice), AmountJSON(s.TargetPrice)})
}

// MarshalJSON implements json.Marshaler.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type snapshot Snapshot
	return json.Marshal(struct {
		snapshot
		TotalSavings json.Number `json:"total_savings"`
	}{snapshot(s), AmountJSON(s.TotalSavings)})
}
