// Package metrics exposes Prometheus metrics for price checks.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric.
const Namespace = "pricewatch"

// Extraction result label values.
const (
	ResultFound    = "found"
	ResultNotFound = "not_found"
)

// Metrics holds the collectors for runs, extractions and fetches.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	ExtractionsTotal *prometheus.CounterVec
	FetchDuration    *prometheus.HistogramVec
	RunDuration      prometheus.Histogram
	Alerts           prometheus.Gauge
	ProductsChecked  prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
	CurrentPrice     *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

// New registers the collectors with a fresh registry, together with the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors with reg.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Completed monitor runs by outcome.",
		}, []string{"status"}),
		ExtractionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "extractions_total",
			Help:      "Price extractions by result and strategy or reason.",
		}, []string{"result", "strategy"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Product page fetch latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		}, []string{"outcome"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a full monitor run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		Alerts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "alerts",
			Help:      "Products at or below their target in the last run.",
		}),
		ProductsChecked: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "products_checked",
			Help:      "Products checked in the last run.",
		}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		CurrentPrice: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "current_price",
			Help:      "Last observed price per product.",
		}, []string{"product"}),
		gatherer: gatherer,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
