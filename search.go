package searchqa

import (
	"context"
	"time"
)

// SearchResult is a single hit returned by a Searcher.
type SearchResult struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Searcher issues a query to an external search provider.
type Searcher interface {
	// Search returns candidate results in provider ranking order.
	// Rate limits and timeouts are reported as ERATELIMIT / ETIMEOUT,
	// bad credentials as EUNAUTHORIZED, and malformed queries as EINVALID.
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// SearchAttempt records one iteration of the evidence-gathering retry loop.
type SearchAttempt struct {
	Attempt  int           `json:"attempt"`
	Query    string        `json:"query"`
	URLs     []string      `json:"urls,omitempty"` // Set on success
	Err      error         `json:"-"`              // Set on failure
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the attempt produced results.
func (a *SearchAttempt) Succeeded() bool {
	return a.Err == nil
}

// ResultParser extracts search results from a provider's HTML results page.
type ResultParser interface {
	ParseResults(html string) ([]SearchResult, error)
}
