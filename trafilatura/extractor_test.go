package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/searchqa"
	"github.com/fwojciec/searchqa/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head>
<title>Eiffel Tower - Travel Guide</title>
<meta property="og:title" content="Eiffel Tower">
</head>
<body>
<nav><a href="/">Home</a><a href="/guides">Guides</a></nav>
<article>
<h1>Eiffel Tower</h1>
<p>The Eiffel Tower is a wrought-iron lattice tower on the Champ de Mars in Paris, France.
It is named after the engineer Gustave Eiffel, whose company designed and built the tower
between 1887 and 1889. The tower is 330 metres tall, about the same height as an 81-storey building.</p>
<p>It was the tallest man-made structure in the world until the Chrysler Building in New York
was finished in 1930, and it remains the most visited paid monument in the world.</p>
</article>
<aside>Related guides: Louvre, Notre-Dame</aside>
<footer>Copyright 2024 Travel Guide</footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title and main content", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(articleHTML)

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
		assert.Contains(t, result.ContentHTML, "330 metres tall")
	})

	t.Run("removes navigation and footer boilerplate", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(articleHTML)

		require.NoError(t, err)
		assert.NotContains(t, result.ContentHTML, "Copyright 2024")
		assert.NotContains(t, result.ContentHTML, ">Guides<")
	})

	t.Run("returns empty content below the minimum text length", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><p>Loading...</p></body></html>`

		result, err := trafilatura.NewExtractor(trafilatura.WithMinText(100)).Extract(html)

		require.NoError(t, err)
		assert.Empty(t, result.ContentHTML)
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract("")

		assert.Equal(t, searchqa.EINVALID, searchqa.ErrorCode(err))
	})

	t.Run("handles minimal valid HTML", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><p>Simple content</p></body></html>`

		result, err := trafilatura.NewExtractor().Extract(html)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "Simple content")
	})
}
