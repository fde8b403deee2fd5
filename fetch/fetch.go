// Package fetch turns a result URL into readable page text by composing a
// Fetcher, one or more Extractors and a Converter.
package fetch

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/searchqa"
)

// DefaultMinContentRunes is the text length below which a page is retried
// with the browser fetcher, if one is configured.
const DefaultMinContentRunes = 200

// Ensure PageFetcher implements searchqa.PageFetcher at compile time.
var _ searchqa.PageFetcher = (*PageFetcher)(nil)

// PageFetcher implements searchqa.PageFetcher. Extractors are tried in
// order until one yields non-empty content; the browser fetcher, if set,
// is used when the plain fetch fails or renders too little text.
type PageFetcher struct {
	fetcher    searchqa.Fetcher
	extractors []searchqa.Extractor
	converter  searchqa.Converter
	limiter    searchqa.DomainLimiter
	browser    searchqa.Fetcher
	minContent int
}

// Option configures a PageFetcher.
type Option func(*PageFetcher)

// WithLimiter rate limits fetches per domain.
func WithLimiter(l searchqa.DomainLimiter) Option {
	return func(f *PageFetcher) {
		f.limiter = l
	}
}

// WithBrowser sets a fetcher for pages that need JavaScript rendering.
func WithBrowser(b searchqa.Fetcher) Option {
	return func(f *PageFetcher) {
		f.browser = b
	}
}

// WithMinContent sets the text length that counts as a rendered page.
func WithMinContent(runes int) Option {
	return func(f *PageFetcher) {
		f.minContent = runes
	}
}

// NewPageFetcher creates a PageFetcher. At least one extractor is required.
func NewPageFetcher(
	fetcher searchqa.Fetcher,
	converter searchqa.Converter,
	extractors []searchqa.Extractor,
	opts ...Option,
) *PageFetcher {
	f := &PageFetcher{
		fetcher:    fetcher,
		extractors: extractors,
		converter:  converter,
		minContent: DefaultMinContentRunes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchPage fetches rawURL and returns its main content as Markdown.
func (f *PageFetcher) FetchPage(ctx context.Context, rawURL string) (*searchqa.Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, searchqa.Errorf(searchqa.EINVALID, "invalid url %q", rawURL)
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, u.Hostname()); err != nil {
			return nil, err
		}
	}

	html, err := f.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		// Non-HTML content will not render differently in a browser.
		if f.browser == nil || ctx.Err() != nil || searchqa.ErrorCode(err) == searchqa.EINVALID {
			return nil, err
		}
		return f.fetchRendered(ctx, rawURL)
	}

	page, err := f.render(rawURL, html)
	if f.browser == nil || (err == nil && contentRunes(page) >= f.minContent) {
		return page, err
	}

	rendered, rerr := f.fetchRendered(ctx, rawURL)
	if rerr != nil || (page != nil && contentRunes(rendered) <= contentRunes(page)) {
		return page, err
	}
	return rendered, nil
}

func (f *PageFetcher) fetchRendered(ctx context.Context, rawURL string) (*searchqa.Page, error) {
	html, err := f.browser.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return f.render(rawURL, html)
}

// render extracts and converts html with the first extractor that works.
func (f *PageFetcher) render(rawURL, html string) (*searchqa.Page, error) {
	for _, ex := range f.extractors {
		result, err := ex.Extract(html)
		if err != nil || strings.TrimSpace(result.ContentHTML) == "" {
			continue
		}

		content, err := f.converter.Convert(result.ContentHTML)
		if err != nil || strings.TrimSpace(content) == "" {
			continue
		}

		return &searchqa.Page{URL: rawURL, Title: result.Title, Content: content}, nil
	}
	return nil, searchqa.Errorf(searchqa.ENOTFOUND, "no readable content at %s", rawURL)
}

func contentRunes(p *searchqa.Page) int {
	if p == nil {
		return 0
	}
	return utf8.RuneCountInString(p.Content)
}
