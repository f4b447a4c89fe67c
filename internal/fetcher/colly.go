package fetcher

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/tinchodeluca/scann-url/internal/logger"
)

// randomUserAgents is a small set of desktop browser user agents used when rotation is on.
var randomUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
}

const acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// CollyFetcher fetches pages with a fresh colly collector per attempt.
type CollyFetcher struct {
	cfg    Config
	logger logger.Logger
}

// NewCollyFetcher creates a fetcher. Zero config fields take their defaults.
func NewCollyFetcher(cfg Config, log logger.Logger) *CollyFetcher {
	return &CollyFetcher{cfg: cfg.WithDefaults(), logger: log}
}

// Fetch downloads url. A transport failure returns an error wrapping
// ErrTransport; any HTTP response, whatever its status, is returned as a Page.
// Transport failures and 5xx responses are retried up to MaxAttempts.
func (f *CollyFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	var (
		page *Page
		err  error
	)

	for attempt := 1; attempt <= f.cfg.MaxAttempts; attempt++ {
		page, err = f.fetchOnce(ctx, url)
		if !retryable(page, err) || attempt == f.cfg.MaxAttempts {
			break
		}

		delay := f.cfg.RetryBackoff * time.Duration(attempt)
		f.logger.Debug("Retrying fetch",
			logger.String("url", url),
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
		case <-time.After(delay):
		}
	}

	return page, err
}

func retryable(page *Page, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	return page.StatusCode >= http.StatusInternalServerError
}

func (f *CollyFetcher) fetchOnce(ctx context.Context, url string) (*Page, error) {
	c := colly.NewCollector(f.collectorOptions(ctx)...)
	c.SetRequestTimeout(f.cfg.RequestTimeout)
	if f.cfg.RespectRobotsTxt {
		c.IgnoreRobotsTxt = false
	}

	c.OnRequest(func(r *colly.Request) {
		if f.cfg.RandomUserAgent {
			r.Headers.Set("User-Agent", randomUserAgents[rand.IntN(len(randomUserAgents))])
		}
		r.Headers.Set("Accept", acceptHTML)
		r.Headers.Set("Accept-Language", f.cfg.AcceptLanguage)
	})

	var page *Page
	c.OnResponse(func(r *colly.Response) {
		page = &Page{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       r.Body,
		}
		if r.Headers != nil {
			page.ContentType = r.Headers.Get("Content-Type")
		}
	})

	if err := c.Visit(url); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, fmt.Errorf("%w: fetch %s: %w", ErrTransport, url, err)
	}
	if page == nil {
		return nil, fmt.Errorf("%w: fetch %s: no response", ErrTransport, url)
	}

	f.logger.Debug("Fetched page",
		logger.String("url", page.URL),
		logger.Int("status", page.StatusCode),
		logger.Int("bytes", len(page.Body)),
	)
	return page, nil
}

func (f *CollyFetcher) collectorOptions(ctx context.Context) []colly.CollectorOption {
	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.ParseHTTPErrorResponse(),
		colly.MaxBodySize(f.cfg.MaxBodySize),
		colly.DetectCharset(),
	}
	if !f.cfg.RespectRobotsTxt {
		opts = append(opts, colly.IgnoreRobotsTxt())
	}
	if !f.cfg.RandomUserAgent {
		opts = append(opts, colly.UserAgent(f.cfg.UserAgent))
	}
	return opts
}
