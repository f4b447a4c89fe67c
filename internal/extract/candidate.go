package extract

import "github.com/PuerkitoBio/goquery"

// Source names the strategy that produced a candidate.
type Source string

// Strategy sources, in the order the default locator tries them.
const (
	SourcePrimary        Source = "primary_selector"
	SourceSecondary      Source = "secondary_selector"
	SourceStructuredData Source = "structured_data"
	SourceMeta           Source = "meta"
	SourceText           Source = "text"
)

// Candidate is a raw string that might be a price.
type Candidate struct {
	Raw    string
	Source Source
}

// Strategy is one heuristic for finding price strings in a document.
// Implementations must tolerate malformed markup and return no candidates
// rather than fail.
type Strategy interface {
	Name() Source
	Candidates(doc *goquery.Document, raw string) []Candidate
}
