package http

import (
	"context"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/searchqa"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout (10s).
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements searchqa.Fetcher at compile time.
var _ searchqa.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves result pages over plain HTTP. It does not execute
// JavaScript; see rod.Fetcher for pages that need it.
//
// Only HTML and plain text responses are accepted. Bodies are decoded to
// UTF-8 from the charset declared in the header or sniffed from the markup.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves url and returns its body as UTF-8 text.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	header := http.Header{}
	header.Set("User-Agent", f.userAgent)
	header.Set("Accept", "text/html,text/plain;q=0.9")

	resp, err := get(ctx, f.client, url, header)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if !acceptedContentType(contentType) {
		return "", searchqa.Errorf(searchqa.EINVALID, "unsupported content type %q for %s", contentType, url)
	}

	r, err := charset.NewReader(resp.Body, contentType)
	if err != nil {
		return "", searchqa.Errorf(searchqa.EINVALID, "decode %s: %v", url, err)
	}

	body, err := readBody(r)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

// acceptedContentType reports whether a response is worth extracting. A
// missing header is accepted; many small sites omit it.
func acceptedContentType(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "text/html", "application/xhtml+xml", "text/plain":
		return true
	}
	return false
}
