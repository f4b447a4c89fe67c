package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/tinchodeluca/scann-url/internal/fetcher"
)

// InstrumentedFetcher records the latency of every fetch.
type InstrumentedFetcher struct {
	next    fetcher.Fetcher
	metrics *Metrics
}

// InstrumentFetcher wraps next.
func InstrumentFetcher(next fetcher.Fetcher, m *Metrics) *InstrumentedFetcher {
	return &InstrumentedFetcher{next: next, metrics: m}
}

// Fetch implements fetcher.Fetcher.
func (f *InstrumentedFetcher) Fetch(ctx context.Context, url string) (*fetcher.Page, error) {
	start := time.Now()
	page, err := f.next.Fetch(ctx, url)

	outcome := "error"
	if err == nil {
		outcome = strconv.Itoa(page.StatusCode/100) + "xx"
	}
	f.metrics.FetchDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return page, err
}
