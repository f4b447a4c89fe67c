// Package testutils provides shared testing utilities across the application.
package testutils

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tinchodeluca/scann-url/internal/domain"
)

// MockNotifier is a mock implementation of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

// Enabled reports whether the notifier is configured.
func (m *MockNotifier) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

// Notify records the alerts it is asked to send.
func (m *MockNotifier) Notify(ctx context.Context, alerts []domain.Observation) error {
	args := m.Called(ctx, alerts)
	return args.Error(0)
}
