package extract

import (
	"context"
	"iter"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Locator runs strategies in order and yields their candidates lazily: a
// strategy is only evaluated once every candidate of the previous one has
// been consumed.
type Locator struct {
	strategies []Strategy
	pause      time.Duration
}

// NewLocator returns a locator over strategies, tried in the given order.
func NewLocator(strategies ...Strategy) *Locator {
	return &Locator{strategies: strategies}
}

// DefaultLocator builds the standard five-strategy chain from cfg.
func DefaultLocator(cfg Config) *Locator {
	cfg = cfg.WithDefaults()
	l := NewLocator(
		NewSelectorStrategy(SourcePrimary, cfg.Selectors.Primary, true),
		NewSelectorStrategy(SourceSecondary, cfg.Selectors.Secondary, false),
		NewStructuredDataStrategy(),
		NewMetaStrategy(cfg.Selectors.Meta),
		NewTextStrategy(cfg.Patterns),
	)
	l.pause = cfg.StrategyPause
	return l
}

// WithPause returns a copy of l that waits d between strategies.
func (l *Locator) WithPause(d time.Duration) *Locator {
	cp := *l
	cp.pause = d
	return &cp
}

// Strategies returns the strategy chain.
func (l *Locator) Strategies() []Strategy {
	return l.strategies
}

// Locate yields candidates from every strategy in order.
func (l *Locator) Locate(doc *goquery.Document, raw string) iter.Seq[Candidate] {
	return l.LocateContext(context.Background(), doc, raw)
}

// LocateContext is Locate with the inter-strategy pause bound to ctx.
// Iteration stops when ctx is done.
func (l *Locator) LocateContext(ctx context.Context, doc *goquery.Document, raw string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for i, s := range l.strategies {
			if i > 0 && !l.wait(ctx) {
				return
			}
			for _, c := range safeCandidates(s, doc, raw) {
				if !yield(c) {
					return
				}
			}
		}
	}
}

func (l *Locator) wait(ctx context.Context) bool {
	if l.pause <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(l.pause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// safeCandidates contains a misbehaving strategy to zero candidates.
func safeCandidates(s Strategy, doc *goquery.Document, raw string) (out []Candidate) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	return s.Candidates(doc, raw)
}
