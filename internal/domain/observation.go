package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Observation is the result of checking one product in one run.
type Observation struct {
	ProductName  string           `json:"product_name"`
	URL          string           `json:"url"`
	CanonicalURL string           `json:"canonical_url,omitempty"`
	Title        string           `json:"title,omitempty"`
	CurrentPrice *decimal.Decimal `json:"current_price"`
	TargetPrice  decimal.Decimal  `json:"target_price"`
	IsAlert      bool             `json:"is_alert"`
	Strategy     string           `json:"strategy,omitempty"`
	Reason       string           `json:"reason,omitempty"`
	ObservedAt   time.Time        `json:"observed_at"`
}

// NewObservation builds an observation for product. A nil price means the
// price could not be obtained; the alert flag is only raised for a known
// price at or below the target.
func NewObservation(p Product, price *decimal.Decimal, observedAt time.Time) Observation {
	obs := Observation{
		ProductName:  p.Name,
		URL:          p.URL,
		CurrentPrice: price,
		TargetPrice:  p.TargetPrice,
		ObservedAt:   observedAt,
	}
	if price != nil {
		obs.IsAlert = price.LessThanOrEqual(p.TargetPrice)
	}
	return obs
}

// HasPrice reports whether a price was obtained.
func (o Observation) HasPrice() bool {
	return o.CurrentPrice != nil
}

// Savings returns target minus current for alerting observations, zero otherwise.
func (o Observation) Savings() decimal.Decimal {
	if !o.IsAlert || o.CurrentPrice == nil {
		return decimal.Zero
	}
	return o.TargetPrice.Sub(*o.CurrentPrice)
}

// Alerts filters the alerting observations, preserving order.
func Alerts(observations []Observation) []Observation {
	alerts := make([]Observation, 0, len(observations))
	for _, o := range observations {
		if o.IsAlert {
			alerts = append(alerts, o)
		}
	}
	return alerts
}
