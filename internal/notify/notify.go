// Package notify delivers price alerts.
package notify

import (
	"context"

	"github.com/tinchodeluca/scann-url/internal/domain"
)

// Notifier sends one message covering every alert of a run.
type Notifier interface {
	// Enabled reports whether the notifier has what it needs to send.
	Enabled() bool
	// Notify sends alerts. An empty slice sends nothing.
	Notify(ctx context.Context, alerts []domain.Observation) error
}
