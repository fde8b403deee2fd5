package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/searchqa"
	"github.com/fwojciec/searchqa/mock"
	sqaslog "github.com/fwojciec/searchqa/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSearcher_Search(t *testing.T) {
	t.Parallel()

	t.Run("logs query and result count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Searcher{
			SearchFn: func(ctx context.Context, query string) ([]searchqa.SearchResult, error) {
				return []searchqa.SearchResult{{URL: "https://a.example"}, {URL: "https://b.example"}}, nil
			},
		}

		searcher := sqaslog.NewLoggingSearcher(inner, logger)
		results, err := searcher.Search(context.Background(), "2024 election winner")

		require.NoError(t, err)
		assert.Len(t, results, 2)
		output := buf.String()
		assert.Contains(t, output, "msg=search")
		assert.Contains(t, output, "query=\"2024 election winner\"")
		assert.Contains(t, output, "count=2")
	})

	t.Run("logs transient failure code", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Searcher{
			SearchFn: func(ctx context.Context, query string) ([]searchqa.SearchResult, error) {
				return nil, searchqa.Errorf(searchqa.ERATELIMIT, "slow down")
			},
		}

		searcher := sqaslog.NewLoggingSearcher(inner, logger)
		_, err := searcher.Search(context.Background(), "q")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "code=rate_limit")
		assert.Contains(t, output, "count=0")
	})
}
