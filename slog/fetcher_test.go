package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/searchqa"
	"github.com/fwojciec/searchqa/mock"
	sqaslog "github.com/fwojciec/searchqa/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs fetch with bytes and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "<html>content</html>", nil
			},
		}

		fetcher := sqaslog.NewLoggingFetcher(inner, logger)
		html, err := fetcher.Fetch(context.Background(), "https://example.com/docs")

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", html)
		output := buf.String()
		assert.Contains(t, output, "fetch")
		assert.Contains(t, output, "url=https://example.com/docs")
		assert.Contains(t, output, "bytes=20")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "", errors.New("network error")
			},
		}

		fetcher := sqaslog.NewLoggingFetcher(inner, logger)
		_, err := fetcher.Fetch(context.Background(), "https://example.com/docs")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "fetch")
		assert.Contains(t, output, "err=\"network error\"")
	})
}

func TestLoggingFetcher_Close(t *testing.T) {
	t.Parallel()

	t.Run("delegates to inner fetcher", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		closeCalled := false
		inner := &mock.Fetcher{
			CloseFn: func() error {
				closeCalled = true
				return nil
			},
		}

		fetcher := sqaslog.NewLoggingFetcher(inner, logger)
		err := fetcher.Close()

		require.NoError(t, err)
		assert.True(t, closeCalled)
	})
}

func TestLoggingPageFetcher_FetchPage(t *testing.T) {
	t.Parallel()

	t.Run("logs extracted size", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PageFetcher{
			FetchPageFn: func(ctx context.Context, url string) (*searchqa.Page, error) {
				return &searchqa.Page{URL: url, Content: "Paris é"}, nil
			},
		}

		fetcher := sqaslog.NewLoggingPageFetcher(inner, logger)
		page, err := fetcher.FetchPage(context.Background(), "https://example.com/a")

		require.NoError(t, err)
		assert.Equal(t, "Paris é", page.Content)
		output := buf.String()
		assert.Contains(t, output, "fetch page")
		assert.Contains(t, output, "url=https://example.com/a")
		assert.Contains(t, output, "chars=7")
	})

	t.Run("logs error code on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PageFetcher{
			FetchPageFn: func(ctx context.Context, url string) (*searchqa.Page, error) {
				return nil, searchqa.Errorf(searchqa.ENOTFOUND, "no content")
			},
		}

		fetcher := sqaslog.NewLoggingPageFetcher(inner, logger)
		_, err := fetcher.FetchPage(context.Background(), "https://example.com/a")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "code=not_found")
		assert.Contains(t, output, "chars=0")
	})
}
