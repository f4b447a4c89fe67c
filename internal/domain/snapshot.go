package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// savingsPlaces is the rounding applied to the aggregated savings figure.
const savingsPlaces = 2

// ProductStatus is one product's line in the current snapshot.
type ProductStatus struct {
	Name         string           `json:"name"`
	URL          string           `json:"url"`
	CurrentPrice *decimal.Decimal `json:"current_price"`
	TargetPrice  decimal.Decimal  `json:"target_price"`
	Alert        bool             `json:"alert"`
	LastChecked  time.Time        `json:"last_checked"`
}

// Snapshot is the current state written once per run.
type Snapshot struct {
	LastUpdate    time.Time       `json:"last_update"`
	Products      []ProductStatus `json:"products"`
	AlertsCount   int             `json:"alerts_count"`
	TotalProducts int             `json:"total_products"`
	TotalSavings  decimal.Decimal `json:"total_savings"`
}

// NewSnapshot aggregates a run's observations.
func NewSnapshot(observations []Observation, at time.Time) Snapshot {
	snap := Snapshot{
		LastUpdate:    at,
		Products:      make([]ProductStatus, 0, len(observations)),
		TotalProducts: len(observations),
		TotalSavings:  decimal.Zero,
	}

	for _, o := range observations {
		snap.Products = append(snap.Products, ProductStatus{
			Name:         o.ProductName,
			URL:          o.URL,
			CurrentPrice: o.CurrentPrice,
			TargetPrice:  o.TargetPrice,
			Alert:        o.IsAlert,
			LastChecked:  o.ObservedAt,
		})
		if o.IsAlert {
			snap.AlertsCount++
			snap.TotalSavings = snap.TotalSavings.Add(o.Savings())
		}
	}

	snap.TotalSavings = snap.TotalSavings.Round(savingsPlaces)
	return snap
}
