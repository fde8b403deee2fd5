package fetch_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fwojciec/searchqa"
	"github.com/fwojciec/searchqa/fetch"
	"github.com/fwojciec/searchqa/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticFetcher(html string, err error) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(context.Context, string) (string, error) {
			return html, err
		},
		CloseFn: func() error { return nil },
	}
}

// bodyExtractor passes the html through as content.
func bodyExtractor(title string) *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(html string) (*searchqa.ExtractResult, error) {
			return &searchqa.ExtractResult{Title: title, ContentHTML: html}, nil
		},
	}
}

func prefixConverter() *mock.Converter {
	return &mock.Converter{
		ConvertFn: func(html string) (string, error) {
			return "md:" + html, nil
		},
	}
}

func TestPageFetcher_FetchPage(t *testing.T) {
	t.Parallel()

	t.Run("fetches, extracts and converts a page", func(t *testing.T) {
		t.Parallel()

		f := fetch.NewPageFetcher(
			staticFetcher("<p>hello</p>", nil),
			prefixConverter(),
			[]searchqa.Extractor{bodyExtractor("Greeting")},
		)

		page, err := f.FetchPage(context.Background(), "https://example.com/a")

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/a", page.URL)
		assert.Equal(t, "Greeting", page.Title)
		assert.Equal(t, "md:<p>hello</p>", page.Content)
	})

	t.Run("falls back to the next extractor", func(t *testing.T) {
		t.Parallel()

		failing := &mock.Extractor{
			ExtractFn: func(string) (*searchqa.ExtractResult, error) {
				return nil, errors.New("no main content")
			},
		}
		empty := &mock.Extractor{
			ExtractFn: func(string) (*searchqa.ExtractResult, error) {
				return &searchqa.ExtractResult{ContentHTML: "  "}, nil
			},
		}
		f := fetch.NewPageFetcher(
			staticFetcher("<p>hello</p>", nil),
			prefixConverter(),
			[]searchqa.Extractor{failing, empty, bodyExtractor("Third")},
		)

		page, err := f.FetchPage(context.Background(), "https://example.com/a")

		require.NoError(t, err)
		assert.Equal(t, "Third", page.Title)
	})

	t.Run("returns not found when no extractor yields content", func(t *testing.T) {
		t.Parallel()

		f := fetch.NewPageFetcher(
			staticFetcher("", nil),
			prefixConverter(),
			[]searchqa.Extractor{bodyExtractor("")},
		)

		_, err := f.FetchPage(context.Background(), "https://example.com/a")

		assert.Equal(t, searchqa.ENOTFOUND, searchqa.ErrorCode(err))
	})

	t.Run("rejects an invalid url", func(t *testing.T) {
		t.Parallel()

		f := fetch.NewPageFetcher(staticFetcher("", nil), prefixConverter(), nil)

		_, err := f.FetchPage(context.Background(), "not a url")

		assert.Equal(t, searchqa.EINVALID, searchqa.ErrorCode(err))
	})

	t.Run("passes fetch errors through", func(t *testing.T) {
		t.Parallel()

		fetchErr := searchqa.Errorf(searchqa.ERATELIMIT, "429")
		f := fetch.NewPageFetcher(staticFetcher("", fetchErr), prefixConverter(), []searchqa.Extractor{bodyExtractor("")})

		_, err := f.FetchPage(context.Background(), "https://example.com/a")

		assert.ErrorIs(t, err, fetchErr)
	})

	t.Run("waits for the domain limiter with the host name", func(t *testing.T) {
		t.Parallel()

		var domain string
		limiter := &mock.DomainLimiter{
			WaitFn: func(_ context.Context, d string) error {
				domain = d
				return nil
			},
		}
		f := fetch.NewPageFetcher(
			staticFetcher("<p>x</p>", nil),
			prefixConverter(),
			[]searchqa.Extractor{bodyExtractor("")},
			fetch.WithLimiter(limiter),
		)

		_, err := f.FetchPage(context.Background(), "https://docs.example.com:8443/a")

		require.NoError(t, err)
		assert.Equal(t, "docs.example.com", domain)
	})

	t.Run("uses the browser when the plain fetch fails", func(t *testing.T) {
		t.Parallel()

		f := fetch.NewPageFetcher(
			staticFetcher("", searchqa.Errorf(searchqa.EUNAUTHORIZED, "403")),
			prefixConverter(),
			[]searchqa.Extractor{bodyExtractor("")},
			fetch.WithBrowser(staticFetcher("<p>rendered</p>", nil)),
		)

		page, err := f.FetchPage(context.Background(), "https://example.com/a")

		require.NoError(t, err)
		assert.Equal(t, "md:<p>rendered</p>", page.Content)
	})

	t.Run("does not use the browser for non-html content", func(t *testing.T) {
		t.Parallel()

		browserCalls := 0
		browser := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				browserCalls++
				return "<p>rendered</p>", nil
			},
		}
		f := fetch.NewPageFetcher(
			staticFetcher("", searchqa.Errorf(searchqa.EINVALID, "application/pdf")),
			prefixConverter(),
			[]searchqa.Extractor{bodyExtractor("")},
			fetch.WithBrowser(browser),
		)

		_, err := f.FetchPage(context.Background(), "https://example.com/a.pdf")

		assert.Equal(t, searchqa.EINVALID, searchqa.ErrorCode(err))
		assert.Equal(t, 0, browserCalls)
	})

	t.Run("prefers the rendered page when the static page is thin", func(t *testing.T) {
		t.Parallel()

		f := fetch.NewPageFetcher(
			staticFetcher("<p>loading</p>", nil),
			prefixConverter(),
			[]searchqa.Extractor{bodyExtractor("")},
			fetch.WithBrowser(staticFetcher("<p>"+strings.Repeat("content ", 20)+"</p>", nil)),
			fetch.WithMinContent(50),
		)

		page, err := f.FetchPage(context.Background(), "https://example.com/a")

		require.NoError(t, err)
		assert.Contains(t, page.Content, "content content")
	})

	t.Run("keeps the static page when rendering adds nothing", func(t *testing.T) {
		t.Parallel()

		f := fetch.NewPageFetcher(
			staticFetcher("<p>short static</p>", nil),
			prefixConverter(),
			[]searchqa.Extractor{bodyExtractor("")},
			fetch.WithBrowser(staticFetcher("<p>x</p>", nil)),
		)

		page, err := f.FetchPage(context.Background(), "https://example.com/a")

		require.NoError(t, err)
		assert.Equal(t, "md:<p>short static</p>", page.Content)
	})
}
