// Package monitor runs one price check over the product catalog and fans the
// observations out to history, the dashboard snapshot and the optional sinks.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tinchodeluca/scann-url/internal/archive"
	"github.com/tinchodeluca/scann-url/internal/domain"
	"github.com/tinchodeluca/scann-url/internal/extract"
	"github.com/tinchodeluca/scann-url/internal/logger"
	"github.com/tinchodeluca/scann-url/internal/metrics"
	"github.com/tinchodeluca/scann-url/internal/notify"
	"github.com/tinchodeluca/scann-url/internal/search"
)

// Run status label values.
const (
	statusSuccess  = "success"
	statusFailed   = "failed"
	statusCanceled = "canceled"
)

// ProductSource loads the products to check.
type ProductSource interface {
	Load() ([]domain.Product, error)
}

// ProductSourceFunc adapts a function to ProductSource.
type ProductSourceFunc func() ([]domain.Product, error)

// Load implements ProductSource.
func (f ProductSourceFunc) Load() ([]domain.Product, error) {
	return f()
}

// PriceExtractor resolves a product URL to a price.
type PriceExtractor interface {
	Extract(ctx context.Context, productURL string) extract.Result
}

// HistoryRecorder stores priced observations.
type HistoryRecorder interface {
	Record(ctx context.Context, obs domain.Observation) error
}

// SnapshotWriter persists the current snapshot.
type SnapshotWriter interface {
	Write(snap domain.Snapshot) error
}

// Deps are the collaborators of a Runner. Indexer, Archiver, Notifier and
// Metrics are optional.
type Deps struct {
	Products  ProductSource
	Extractor PriceExtractor
	History   HistoryRecorder
	Snapshots SnapshotWriter
	Notifier  notify.Notifier
	Indexer   search.Indexer
	Archiver  archive.Archiver
	Metrics   *metrics.Metrics
	Logger    logger.Logger
}

// Runner checks every product once per Run.
type Runner struct {
	cfg  Config
	deps Deps

	now      func() time.Time
	newRunID func() string
}

// NewRunner creates a runner.
func NewRunner(cfg Config, deps Deps) *Runner {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	return &Runner{
		cfg:      cfg.WithDefaults(),
		deps:     deps,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
}

// WithClock returns a copy of r that reads time from now.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	cp := *r
	cp.now = now
	return &cp
}

// WithRunID returns a copy of r that names every run id.
func (r *Runner) WithRunID(id string) *Runner {
	cp := *r
	cp.newRunID = func() string { return id }
	return &cp
}

// Run checks every product. Failures of single products and of the side
// effects are logged and never abort the run; only an unreadable catalog or
// cancellation returns an error.
func (r *Runner) Run(ctx context.Context) (RunReport, error) {
	report := RunReport{
		RunID:        r.newRunID(),
		StartedAt:    r.now(),
		TotalSavings: decimal.Zero,
	}
	log := r.deps.Logger.With(logger.String("run_id", report.RunID))

	products, err := r.deps.Products.Load()
	if err != nil {
		r.finishRun(&report, statusFailed)
		return report, fmt.Errorf("load products: %w", err)
	}
	report.Products = len(products)
	if len(products) == 0 {
		log.Info("No products to check")
		r.finishRun(&report, statusSuccess)
		return report, nil
	}

	log.Info("Starting price check",
		logger.Int("products", len(products)),
		logger.Int("concurrency", r.cfg.Concurrency),
	)

	observations, err := r.checkAll(ctx, report.RunID, products, log)
	if err != nil {
		r.finishRun(&report, statusCanceled)
		return report, fmt.Errorf("check products: %w", err)
	}

	report.Observations = observations
	report.FinishedAt = r.now()

	snap := domain.NewSnapshot(observations, report.FinishedAt)
	report.Alerts = snap.AlertsCount
	report.TotalSavings = snap.TotalSavings
	for _, o := range observations {
		if o.HasPrice() {
			report.Priced++
		}
	}

	r.publish(ctx, &report, snap, log)
	r.finishRun(&report, statusSuccess)

	log.Info("Price check finished",
		logger.Int("products", report.Products),
		logger.Int("priced", report.Priced),
		logger.Int("alerts", report.Alerts),
		logger.String("total_savings", report.TotalSavings.StringFixed(2)),
		logger.Duration("duration", report.Duration()),
	)
	return report, nil
}

// checkAll paces fetches through a limiter and keeps results in catalog order.
func (r *Runner) checkAll(ctx context.Context, runID string, products []domain.Product, log logger.Logger) ([]domain.Observation, error) {
	limit := rate.Inf
	if r.cfg.Delay > 0 {
		limit = rate.Every(r.cfg.Delay)
	}
	pacer := rate.NewLimiter(limit, 1)

	observations := make([]domain.Observation, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for i, p := range products {
		g.Go(func() error {
			if err := pacer.Wait(gctx); err != nil {
				return err
			}
			observations[i] = r.checkProduct(gctx, runID, p, log)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return observations, nil
}

func (r *Runner) checkProduct(ctx context.Context, runID string, p domain.Product, log logger.Logger) domain.Observation {
	res := r.deps.Extractor.Extract(ctx, p.URL)

	obs := domain.NewObservation(p, res.PricePtr(), r.now())
	obs.CanonicalURL = res.CanonicalURL
	obs.Title = res.Title
	obs.Strategy = string(res.Strategy)
	obs.Reason = string(res.Reason)

	plog := log.With(logger.String("product", p.Name))
	if !res.Found {
		plog.Info("Price not found",
			logger.String("reason", obs.Reason),
			logger.Int("status_code", res.StatusCode),
		)
		r.observeExtraction(metrics.ResultNotFound, obs.Reason)
		r.archivePage(ctx, runID, obs, res, plog)
		return obs
	}

	plog.Info("Price found",
		logger.String("price", res.Price.StringFixed(2)),
		logger.String("target", p.TargetPrice.StringFixed(2)),
		logger.String("strategy", obs.Strategy),
		logger.Bool("alert", obs.IsAlert),
	)
	r.observeExtraction(metrics.ResultFound, obs.Strategy)
	if r.deps.Metrics != nil {
		r.deps.Metrics.CurrentPrice.WithLabelValues(p.Name).Set(res.Price.InexactFloat64())
	}

	if r.deps.History != nil {
		if err := r.deps.History.Record(ctx, obs); err != nil {
			plog.Error("Failed to record price history", logger.Error(err))
		}
	}
	return obs
}

func (r *Runner) archivePage(ctx context.Context, runID string, obs domain.Observation, res extract.Result, log logger.Logger) {
	if r.deps.Archiver == nil || len(res.Body) == 0 {
		return
	}
	err := r.deps.Archiver.Archive(ctx, archive.Page{
		RunID:       runID,
		ProductName: obs.ProductName,
		URL:         res.CanonicalURL,
		StatusCode:  res.StatusCode,
		Reason:      obs.Reason,
		HTML:        res.Body,
		FetchedAt:   obs.ObservedAt,
	})
	if err != nil {
		log.Warn("Failed to archive page", logger.Error(err))
	}
}

// publish runs the per-run side effects. Each failure is logged on its own.
func (r *Runner) publish(ctx context.Context, report *RunReport, snap domain.Snapshot, log logger.Logger) {
	if r.deps.Snapshots != nil {
		if err := r.deps.Snapshots.Write(snap); err != nil {
			log.Error("Failed to write snapshot", logger.Error(err))
		}
	}

	if r.deps.Indexer != nil {
		if err := r.deps.Indexer.Index(ctx, report.RunID, report.Observations); err != nil {
			log.Warn("Failed to index observations", logger.Error(err))
		}
	}

	alerts := domain.Alerts(report.Observations)
	switch {
	case len(alerts) == 0:
		log.Debug("No alerts to notify")
	case r.deps.Notifier == nil || !r.deps.Notifier.Enabled():
		log.Debug("Notifier not configured, skipping", logger.Int("alerts", len(alerts)))
	default:
		if err := r.deps.Notifier.Notify(ctx, alerts); err != nil {
			log.Error("Failed to send notification", logger.Error(err))
			break
		}
		report.Notified = true
		log.Info("Notification sent", logger.Int("alerts", len(alerts)))
	}
}

func (r *Runner) observeExtraction(result, label string) {
	if r.deps.Metrics == nil {
		return
	}
	r.deps.Metrics.ExtractionsTotal.WithLabelValues(result, label).Inc()
}

func (r *Runner) finishRun(report *RunReport, status string) {
	if report.FinishedAt.IsZero() {
		report.FinishedAt = r.now()
	}
	m := r.deps.Metrics
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(report.Duration().Seconds())
	if status != statusSuccess {
		return
	}
	m.Alerts.Set(float64(report.Alerts))
	m.ProductsChecked.Set(float64(report.Products))
	m.LastRunTimestamp.Set(float64(report.FinishedAt.Unix()))
}

// IsCanceled reports whether err comes from a canceled or expired run.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
