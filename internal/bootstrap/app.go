// Package bootstrap wires the pricewatch components from a loaded Config.
//
// The wiring follows these phases:
//   - Phase 1: Metrics - Prometheus registry shared by the runner and the API
//   - Phase 2: Storage - History store for the configured backend
//   - Phase 3: Sinks - Optional Elasticsearch index and MinIO page archive
//   - Phase 4: Extraction - Colly fetcher, instrumented, behind the extractor
//   - Phase 5: Runner - Catalog, snapshot and notifier around one monitor run
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/tinchodeluca/scann-url/internal/archive"
	"github.com/tinchodeluca/scann-url/internal/catalog"
	"github.com/tinchodeluca/scann-url/internal/config"
	"github.com/tinchodeluca/scann-url/internal/dashboard"
	"github.com/tinchodeluca/scann-url/internal/extract"
	"github.com/tinchodeluca/scann-url/internal/fetcher"
	"github.com/tinchodeluca/scann-url/internal/history"
	"github.com/tinchodeluca/scann-url/internal/logger"
	"github.com/tinchodeluca/scann-url/internal/metrics"
	"github.com/tinchodeluca/scann-url/internal/monitor"
	"github.com/tinchodeluca/scann-url/internal/notify"
	"github.com/tinchodeluca/scann-url/internal/search"
)

// App holds the wired components.
type App struct {
	Config    *config.Config
	Logger    logger.Logger
	Metrics   *metrics.Metrics
	History   *history.Service
	Snapshots *dashboard.SnapshotStore
	Catalog   *catalog.Loader
	Runner    *monitor.Runner
}

// NewApp builds every component. The caller must Close the app.
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	// Phase 1: Metrics
	m := metrics.New()

	// Phase 2: Storage
	store, err := history.NewStore(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("setup history store: %w", err)
	}
	historySvc := history.NewService(store, log)

	// Phase 3: Sinks
	sinks, err := setupSinks(ctx, cfg, log)
	if err != nil {
		_ = historySvc.Close()
		return nil, err
	}

	// Phase 4: Extraction
	f := metrics.InstrumentFetcher(fetcher.NewCollyFetcher(cfg.Fetcher, log), m)
	extractor := extract.NewExtractor(f, cfg.Extract, cfg.Validator, log)

	// Phase 5: Runner
	products := catalog.NewLoader(cfg.Monitor.ProductsFile, log)
	snapshots := dashboard.NewSnapshotStore(cfg.Dashboard.SnapshotFile)

	deps := monitor.Deps{
		Products:  products,
		Extractor: extractor,
		History:   historySvc,
		Snapshots: snapshots,
		Notifier:  notify.NewEmailNotifier(cfg.Notify, log),
		Metrics:   m,
		Logger:    log,
	}
	if sinks.indexer != nil {
		deps.Indexer = sinks.indexer
	}
	if sinks.archiver != nil {
		deps.Archiver = sinks.archiver
	}

	log.Info("Application wired",
		logger.String("storage_backend", cfg.Storage.Backend),
		logger.String("products_file", cfg.Monitor.ProductsFile),
		logger.Bool("elasticsearch", sinks.indexer != nil),
		logger.Bool("archive", sinks.archiver != nil),
	)

	return &App{
		Config:    cfg,
		Logger:    log,
		Metrics:   m,
		History:   historySvc,
		Snapshots: snapshots,
		Catalog:   products,
		Runner:    monitor.NewRunner(cfg.Monitor, deps),
	}, nil
}

// Close releases the history store and flushes the logger.
func (a *App) Close() error {
	err := a.History.Close()
	_ = a.Logger.Sync()
	return err
}

type sinks struct {
	indexer  *search.ElasticIndexer
	archiver *archive.MinioArchiver
}

func setupSinks(ctx context.Context, cfg *config.Config, log logger.Logger) (sinks, error) {
	var s sinks

	if cfg.Elasticsearch.Enabled {
		idx, err := search.NewElasticIndexer(cfg.Elasticsearch, log)
		if err != nil {
			return s, fmt.Errorf("setup elasticsearch: %w", err)
		}
		s.indexer = idx
	}

	if cfg.Archive.Enabled {
		a, err := archive.NewMinioArchiver(cfg.Archive, log)
		if err != nil {
			return s, fmt.Errorf("setup archive: %w", err)
		}
		if bucketErr := a.EnsureBucket(ctx); bucketErr != nil {
			log.Warn("Archive bucket not ready, uploads may fail", logger.Error(bucketErr))
		}
		s.archiver = a
	}

	return s, nil
}
