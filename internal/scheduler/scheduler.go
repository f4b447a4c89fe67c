// Package scheduler triggers monitor runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tinchodeluca/scann-url/internal/logger"
)

// parser accepts the standard five fields plus descriptors.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// RunFunc performs one scheduled run.
type RunFunc func(ctx context.Context) error

// Scheduler runs a RunFunc on every tick. A tick that fires while the
// previous run is still going is skipped.
type Scheduler struct {
	cfg     Config
	cron    *cron.Cron
	run     RunFunc
	logger  logger.Logger
	entryID cron.EntryID
}

// New validates the schedule and prepares the cron instance.
func New(cfg Config, run RunFunc, log logger.Logger) (*Scheduler, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	return &Scheduler{cfg: cfg, cron: c, run: run, logger: log}, nil
}

// Run blocks until ctx is done, then waits for an in-flight run to return.
func (s *Scheduler) Run(ctx context.Context) error {
	id, err := s.cron.AddFunc(s.cfg.Cron, func() { s.trigger(ctx, "cron") })
	if err != nil {
		return fmt.Errorf("schedule %q: %w", s.cfg.Cron, err)
	}
	s.entryID = id

	if s.cfg.RunOnStart {
		s.trigger(ctx, "start")
	}

	s.cron.Start()
	s.logger.Info("Scheduler started",
		logger.String("cron", s.cfg.Cron),
		logger.Time("next_run", s.Next()),
	)

	<-ctx.Done()

	stopped := s.cron.Stop()
	<-stopped.Done()
	s.logger.Info("Scheduler stopped")
	return nil
}

// Next returns the next scheduled tick, zero before Run.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// NextAfter returns the first tick of expr after t.
func NextAfter(expr string, t time.Time) (time.Time, error) {
	sched, err := parser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron %q: %w", expr, err)
	}
	return sched.Next(t), nil
}

func (s *Scheduler) trigger(ctx context.Context, source string) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	s.logger.Info("Scheduled run triggered", logger.String("trigger", source))

	if err := s.run(ctx); err != nil {
		s.logger.Error("Scheduled run failed",
			logger.String("trigger", source),
			logger.Duration("duration", time.Since(start)),
			logger.Error(err),
		)
		return
	}
	s.logger.Debug("Scheduled run completed",
		logger.String("trigger", source),
		logger.Duration("duration", time.Since(start)),
	)
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, fields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(fields(keysAndValues), logger.Error(err))...)
}

func fields(keysAndValues []any) []logger.Field {
	out := make([]logger.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		out = append(out, logger.Any(key, keysAndValues[i+1]))
	}
	return out
}
