package history

import (
	"context"

	"github.com/tinchodeluca/scann-url/internal/domain"
	"github.com/tinchodeluca/scann-url/internal/logger"
)

// Service records observations into a Store. Updates to the same product
// never interleave.
type Service struct {
	store  Store
	locks  *keyedMutex
	logger logger.Logger
}

// NewService wraps store.
func NewService(store Store, log logger.Logger) *Service {
	return &Service{store: store, locks: newKeyedMutex(), logger: log}
}

// Record merges obs into its product's history under the day it was observed.
// Observations without a price are ignored.
func (s *Service) Record(ctx context.Context, obs domain.Observation) error {
	if !obs.HasPrice() {
		return nil
	}

	today := domain.Day(obs.ObservedAt)

	unlock := s.locks.Lock(obs.ProductName)
	defer unlock()

	err := s.store.Update(ctx, obs.ProductName, func(h domain.ProductHistory) domain.ProductHistory {
		return Merge(h, today, obs)
	})
	if err != nil {
		return err
	}

	s.logger.Debug("Recorded price",
		logger.String("product", obs.ProductName),
		logger.String("date", today),
		logger.Stringer("price", obs.CurrentPrice),
	)
	return nil
}

// Get returns one product's history.
func (s *Service) Get(ctx context.Context, name string) (domain.ProductHistory, error) {
	return s.store.Get(ctx, name)
}

// All returns every product's history.
func (s *Service) All(ctx context.Context) (map[string]domain.ProductHistory, error) {
	return s.store.All(ctx)
}

// Close closes the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}
