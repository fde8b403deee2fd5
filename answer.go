package searchqa

import (
	"context"
	"strings"
)

// Answer is the terminal artifact for a question, written exactly once.
type Answer struct {
	QuestionID    int    `json:"questionId"`
	Text          string `json:"text"`
	UsedSearch    bool   `json:"usedSearch"`
	EvidenceCount int    `json:"evidenceCount"`

	// Attempts is the number of search attempts made. Not part of the output file.
	Attempts int `json:"attempts"`
}

// AnswerStore persists answers keyed by student and question so that
// interrupted batches can resume.
type AnswerStore interface {
	// FindAnswer returns the stored answer for the question.
	// Returns ENOTFOUND if none was stored or the question text changed.
	FindAnswer(ctx context.Context, studentID string, q *Question) (*Answer, error)

	// SaveAnswer stores the answer for the question, replacing any previous one.
	SaveAnswer(ctx context.Context, studentID string, q *Question, a *Answer) error
}

// AnswerSink writes batch output with atomic semantics.
// Write buffers answers in call order; Commit makes the output visible;
// Abort discards it.
type AnswerSink interface {
	Write(ctx context.Context, a *Answer) error
	Commit() error
	Abort() error
}

// SingleLine collapses all runs of whitespace, including newlines, into
// single spaces so that an answer fits on one output line.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
