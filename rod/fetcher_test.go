package rod_test

import (
	"context"
	"testing"

	"github.com/fwojciec/searchqa/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Close(t *testing.T) {
	t.Parallel()

	t.Run("is safe before any fetch and when repeated", func(t *testing.T) {
		t.Parallel()

		fetcher := rod.NewFetcher()

		require.NoError(t, fetcher.Close())
		require.NoError(t, fetcher.Close())
	})
}

func TestFetcher_Fetch_CanceledContext(t *testing.T) {
	t.Parallel()

	fetcher := rod.NewFetcher()
	defer fetcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Returns before launching a browser.
	_, err := fetcher.Fetch(ctx, "http://example.com")

	assert.ErrorIs(t, err, context.Canceled)
}
