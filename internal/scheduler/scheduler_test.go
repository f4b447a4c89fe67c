package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinchodeluca/scann-url/internal/logger"
	"github.com/tinchodeluca/scann-url/internal/scheduler"
)

func TestConfig(t *testing.T) {
	t.Parallel()

	cfg := scheduler.Config{}.WithDefaults()
	assert.Equal(t, "0 */6 * * *", cfg.Cron)
	require.NoError(t, cfg.Validate())

	require.NoError(t, scheduler.Config{Cron: "@hourly"}.Validate())
	require.Error(t, scheduler.Config{Cron: "every six hours"}.Validate())
}

func TestNew_InvalidCron(t *testing.T) {
	t.Parallel()

	_, err := scheduler.New(scheduler.Config{Cron: "61 * * * *"}, func(context.Context) error { return nil }, logger.NewNop())
	require.Error(t, err)
}

func TestNextAfter(t *testing.T) {
	t.Parallel()

	next, err := scheduler.NextAfter("0 */6 * * *", time.Date(2026, 3, 1, 7, 15, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), next)
}

func TestScheduler_RunOnStartThenStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	s, err := scheduler.New(scheduler.Config{Cron: "@yearly", RunOnStart: true}, func(context.Context) error {
		runs.Add(1)
		cancel()
		return errors.New("logged, not returned")
	}, logger.NewNop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_TicksRun(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	s, err := scheduler.New(scheduler.Config{Cron: "@every 1s"}, func(context.Context) error {
		if runs.Add(1) == 1 {
			cancel()
		}
		return nil
	}, logger.NewNop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler never ticked")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(1))
}
