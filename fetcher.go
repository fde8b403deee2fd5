package searchqa

import "context"

// Fetcher retrieves raw HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch retrieves the URL and returns its HTML decoded to UTF-8.
	// The context controls timeout and cancellation.
	// Non-HTML responses and 4xx statuses are permanent (EINVALID / ENOTFOUND);
	// 429 and 5xx statuses are transient (ERATELIMIT / EUNAVAILABLE).
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// Page is a fetched web page reduced to readable text.
type Page struct {
	URL     string
	Title   string
	Content string // Markdown or plain text
}

// PageFetcher retrieves a URL and extracts its readable text.
// Implementations hide HTTP vs browser selection, content extraction,
// and markdown conversion.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (*Page, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
