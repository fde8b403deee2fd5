package mock

import (
	"context"

	"github.com/fwojciec/searchqa"
)

// Compile-time interface verification.
var (
	_ searchqa.Fetcher       = (*Fetcher)(nil)
	_ searchqa.PageFetcher   = (*PageFetcher)(nil)
	_ searchqa.Extractor     = (*Extractor)(nil)
	_ searchqa.Converter     = (*Converter)(nil)
	_ searchqa.DomainLimiter = (*DomainLimiter)(nil)
)

// Fetcher is a mock implementation of searchqa.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

// PageFetcher is a mock implementation of searchqa.PageFetcher.
type PageFetcher struct {
	FetchPageFn func(ctx context.Context, url string) (*searchqa.Page, error)
}

func (f *PageFetcher) FetchPage(ctx context.Context, url string) (*searchqa.Page, error) {
	return f.FetchPageFn(ctx, url)
}

// Extractor is a mock implementation of searchqa.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*searchqa.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*searchqa.ExtractResult, error) {
	return e.ExtractFn(html)
}

// Converter is a mock implementation of searchqa.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

// DomainLimiter is a mock implementation of searchqa.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
