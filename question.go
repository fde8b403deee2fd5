package searchqa

import (
	"context"
	"strings"
)

// Question is a single line of batch input.
// ID is the 1-based line index, optionally offset per batch.
type Question struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Validate returns an error if the question contains invalid fields.
func (q *Question) Validate() error {
	if q.ID <= 0 {
		return Errorf(EINVALID, "question ID must be positive")
	}
	if strings.TrimSpace(q.Text) == "" {
		return Errorf(EINVALID, "question text required")
	}
	return nil
}

// Answerer produces an answer for one question.
type Answerer interface {
	// Answer answers the question. Implementations degrade internal failures
	// into a best-effort answer; a returned error means the answerer itself
	// is broken and the caller should record a placeholder.
	Answer(ctx context.Context, q *Question) (*Answer, error)
}

// RefinedQuery is the model's reading of a question: its core intent,
// whether answering it needs external information, and what to search for.
type RefinedQuery struct {
	CoreQuestion string   `json:"coreQuestion"`
	Keywords     []string `json:"keywords,omitempty"` // Empty unless NeedsSearch
	NeedsSearch  bool     `json:"needsSearch"`
}

// Query returns the search query built from the keywords.
// Falls back to the core question when there are no keywords.
func (r *RefinedQuery) Query() string {
	if len(r.Keywords) == 0 {
		return strings.TrimSpace(r.CoreQuestion)
	}
	return strings.Join(r.Keywords, " ")
}
