// Package extract recovers a product price from unreliable HTML by trying a
// chain of location strategies and keeping the first candidate that parses
// and passes the plausibility check.
package extract

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/tinchodeluca/scann-url/internal/fetcher"
	"github.com/tinchodeluca/scann-url/internal/logger"
	"github.com/tinchodeluca/scann-url/internal/producturl"
)

// Reason explains why no price was found.
type Reason string

// Not-found reasons.
const (
	ReasonFetchFailed       Reason = "fetch_failed"
	ReasonBadStatus         Reason = "bad_status"
	ReasonMalformedDocument Reason = "malformed_document"
	ReasonNoValidCandidate  Reason = "no_valid_candidate"
)

// Result is the outcome of one extraction. When Found is false, Reason is set
// and Price is zero.
type Result struct {
	Found        bool
	Price        decimal.Decimal
	Strategy     Source
	Reason       Reason
	Title        string
	CanonicalURL string
	StatusCode   int
	// Body is the fetched markup, kept for archiving pages without a price.
	Body []byte
}

// PricePtr returns the price, or nil when none was found.
func (r Result) PricePtr() *decimal.Decimal {
	if !r.Found {
		return nil
	}
	p := r.Price
	return &p
}

// Extractor fetches product pages and extracts their price.
type Extractor struct {
	fetcher        fetcher.Fetcher
	locator        *Locator
	validator      *Validator
	titleSelectors []string
	logger         logger.Logger
}

// NewExtractor builds an extractor with the default strategy chain.
func NewExtractor(f fetcher.Fetcher, cfg Config, vcfg ValidatorConfig, log logger.Logger) *Extractor {
	cfg = cfg.WithDefaults()
	return &Extractor{
		fetcher:        f,
		locator:        DefaultLocator(cfg),
		validator:      NewValidator(vcfg),
		titleSelectors: cfg.Selectors.Title,
		logger:         log,
	}
}

// WithLocator returns a copy of e that uses l.
func (e *Extractor) WithLocator(l *Locator) *Extractor {
	cp := *e
	cp.locator = l
	return &cp
}

// Extract canonicalizes productURL, fetches it and extracts the price.
// Every failure is reported through Result; Extract never returns an error.
func (e *Extractor) Extract(ctx context.Context, productURL string) Result {
	target, err := producturl.Canonicalize(productURL)
	if err != nil {
		e.logger.Debug("Using product URL as given",
			logger.String("url", productURL),
			logger.Error(err),
		)
		target = productURL
	}

	page, err := e.fetcher.Fetch(ctx, target)
	if err != nil {
		e.logger.Debug("Fetch failed", logger.String("url", target), logger.Error(err))
		return Result{Reason: ReasonFetchFailed, CanonicalURL: target}
	}
	if !page.OK() {
		return Result{Reason: ReasonBadStatus, CanonicalURL: target, StatusCode: page.StatusCode, Body: page.Body}
	}

	res := e.extractDocument(ctx, page.Body, "")
	res.CanonicalURL = target
	res.StatusCode = page.StatusCode
	res.Body = page.Body
	return res
}

// ExtractDocument runs the strategy chain over already fetched markup. An
// empty title is read from the document.
func (e *Extractor) ExtractDocument(body []byte, title string) Result {
	return e.extractDocument(context.Background(), body, title)
}

func (e *Extractor) extractDocument(ctx context.Context, body []byte, title string) Result {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Result{Reason: ReasonMalformedDocument, Title: title}
	}
	if title == "" {
		title = e.pageTitle(doc)
	}

	for c := range e.locator.LocateContext(ctx, doc, string(body)) {
		price, parseErr := ParseNumber(c.Raw)
		if parseErr != nil {
			continue
		}
		if !e.validator.Validate(price, title) {
			e.logger.Debug("Rejected implausible price",
				logger.String("raw", c.Raw),
				logger.String("strategy", string(c.Source)),
			)
			continue
		}
		return Result{Found: true, Price: price, Strategy: c.Source, Title: title}
	}

	return Result{Reason: ReasonNoValidCandidate, Title: title}
}

func (e *Extractor) pageTitle(doc *goquery.Document) string {
	for _, sel := range e.titleSelectors {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		text, ok := el.Attr("content")
		if !ok {
			text = el.Text()
		}
		if text = strings.Join(strings.Fields(text), " "); text != "" {
			return text
		}
	}
	return ""
}
