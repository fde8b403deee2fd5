package qa_test

import (
	"testing"

	"github.com/fwojciec/searchqa"
	"github.com/fwojciec/searchqa/qa"
	"github.com/stretchr/testify/assert"
)

func TestBuildAnswerPrompt(t *testing.T) {
	t.Parallel()

	t.Run("includes evidence with source headers", func(t *testing.T) {
		t.Parallel()

		evidence := []*searchqa.Evidence{
			{SourceURL: "https://example.com/a", Title: "A", Text: "alpha text"},
			{SourceURL: "https://example.com/b", Text: "beta text"},
		}

		p := qa.BuildAnswerPrompt("What?", evidence, "English")

		assert.Contains(t, p.User, "<background>\n## Source: A\nalpha text\n\n## Source: https://example.com/b\nbeta text\n</background>")
		assert.Contains(t, p.User, "Question: What?")
		assert.Contains(t, p.User, "in English")
	})

	t.Run("states that no evidence is available", func(t *testing.T) {
		t.Parallel()

		p := qa.BuildAnswerPrompt("What?", nil, "English")

		assert.Contains(t, p.User, "<background>\nNo search results are available for this question.\n</background>")
	})
}

func TestBuildPrompts_Language(t *testing.T) {
	t.Parallel()

	assert.Contains(t, qa.BuildRefinePrompt("q", "Traditional Chinese").User, "in Traditional Chinese")
	assert.Contains(t, qa.BuildKeywordsPrompt("q", "Traditional Chinese").User, "in Traditional Chinese")
	assert.Contains(t, qa.BuildDecisionPrompt("q").User, "Question: q")
}
