// Package fetcher downloads product pages.
package fetcher

import (
	"context"
	"errors"
	"net/http"
)

// ErrTransport marks failures where no HTTP response was received:
// DNS, connection, TLS, timeout or cancellation.
var ErrTransport = errors.New("transport failure")

// Page is a fetched document. Non-2xx responses are returned as pages so
// callers can decide how to treat the status.
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports whether the response status is 2xx.
func (p *Page) OK() bool {
	return p.StatusCode >= http.StatusOK && p.StatusCode < http.StatusMultipleChoices
}

//go:generate mockgen -destination=../../testutils/mocks/fetcher/fetcher.go -package=fetcher . Fetcher

// Fetcher retrieves a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}
