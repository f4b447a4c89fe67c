package monitor

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tinchodeluca/scann-url/internal/domain"
)

// RunReport summarizes one run.
type RunReport struct {
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	Products     int
	Priced       int
	Alerts       int
	TotalSavings decimal.Decimal
	Notified     bool
	Observations []domain.Observation
}

// Duration is the wall time of the run.
func (r RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// NotFound counts the products without a price.
func (r RunReport) NotFound() int {
	return r.Products - r.Priced
}
