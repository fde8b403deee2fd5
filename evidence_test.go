package searchqa_test

import (
	"testing"

	"github.com/fwojciec/searchqa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEvidence(t *testing.T) {
	t.Parallel()

	t.Run("formats single entry with title", func(t *testing.T) {
		t.Parallel()

		evidence := []*searchqa.Evidence{
			{Title: "Election results", Text: "X won."},
		}

		result := searchqa.FormatEvidence(evidence)

		assert.Equal(t, "## Source: Election results\nX won.", result)
	})

	t.Run("uses source URL when title is empty", func(t *testing.T) {
		t.Parallel()

		evidence := []*searchqa.Evidence{
			{SourceURL: "https://example.com/news", Text: "Some content."},
		}

		result := searchqa.FormatEvidence(evidence)

		assert.Equal(t, "## Source: https://example.com/news\nSome content.", result)
	})

	t.Run("separates entries with blank line", func(t *testing.T) {
		t.Parallel()

		evidence := []*searchqa.Evidence{
			{Title: "One", Text: "First."},
			{Title: "Two", Text: "Second."},
		}

		result := searchqa.FormatEvidence(evidence)

		assert.Equal(t, "## Source: One\nFirst.\n\n## Source: Two\nSecond.", result)
	})

	t.Run("returns empty string for nil slice", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, searchqa.FormatEvidence(nil))
	})
}

func TestTruncateEvidence(t *testing.T) {
	t.Parallel()

	t.Run("keeps everything under the limit", func(t *testing.T) {
		t.Parallel()

		evidence := []*searchqa.Evidence{{Text: "abc"}, {Text: "def"}}

		out := searchqa.TruncateEvidence(evidence, 10)

		require.Len(t, out, 2)
		assert.Equal(t, "abc", out[0].Text)
		assert.Equal(t, "def", out[1].Text)
	})

	t.Run("cuts the entry that crosses the limit and drops the rest", func(t *testing.T) {
		t.Parallel()

		evidence := []*searchqa.Evidence{{Text: "abcd"}, {Text: "efgh"}, {Text: "ijkl"}}

		out := searchqa.TruncateEvidence(evidence, 6)

		require.Len(t, out, 2)
		assert.Equal(t, "abcd", out[0].Text)
		assert.Equal(t, "ef", out[1].Text)
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		t.Parallel()

		evidence := []*searchqa.Evidence{{Text: "巴黎是法國首都"}}

		out := searchqa.TruncateEvidence(evidence, 2)

		require.Len(t, out, 1)
		assert.Equal(t, "巴黎", out[0].Text)
	})

	t.Run("zero limit disables truncation", func(t *testing.T) {
		t.Parallel()

		evidence := []*searchqa.Evidence{{Text: "abcdef"}}

		out := searchqa.TruncateEvidence(evidence, 0)

		assert.Equal(t, evidence, out)
	})

	t.Run("does not modify input", func(t *testing.T) {
		t.Parallel()

		evidence := []*searchqa.Evidence{{Text: "abcdef"}}

		_ = searchqa.TruncateEvidence(evidence, 3)

		assert.Equal(t, "abcdef", evidence[0].Text)
	})
}
