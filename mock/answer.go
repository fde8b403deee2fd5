package mock

import (
	"context"

	"github.com/fwojciec/searchqa"
)

// Compile-time interface verification.
var (
	_ searchqa.Answerer    = (*Answerer)(nil)
	_ searchqa.AnswerStore = (*AnswerStore)(nil)
	_ searchqa.AnswerSink  = (*AnswerSink)(nil)
)

// Answerer is a mock implementation of searchqa.Answerer.
type Answerer struct {
	AnswerFn func(ctx context.Context, q *searchqa.Question) (*searchqa.Answer, error)
}

func (a *Answerer) Answer(ctx context.Context, q *searchqa.Question) (*searchqa.Answer, error) {
	return a.AnswerFn(ctx, q)
}

// AnswerStore is a mock implementation of searchqa.AnswerStore.
type AnswerStore struct {
	FindAnswerFn func(ctx context.Context, studentID string, q *searchqa.Question) (*searchqa.Answer, error)
	SaveAnswerFn func(ctx context.Context, studentID string, q *searchqa.Question, a *searchqa.Answer) error
}

func (s *AnswerStore) FindAnswer(ctx context.Context, studentID string, q *searchqa.Question) (*searchqa.Answer, error) {
	return s.FindAnswerFn(ctx, studentID, q)
}

func (s *AnswerStore) SaveAnswer(ctx context.Context, studentID string, q *searchqa.Question, a *searchqa.Answer) error {
	return s.SaveAnswerFn(ctx, studentID, q, a)
}

// AnswerSink is a mock implementation of searchqa.AnswerSink.
type AnswerSink struct {
	WriteFn  func(ctx context.Context, a *searchqa.Answer) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *AnswerSink) Write(ctx context.Context, a *searchqa.Answer) error {
	return s.WriteFn(ctx, a)
}

func (s *AnswerSink) Commit() error {
	return s.CommitFn()
}

func (s *AnswerSink) Abort() error {
	return s.AbortFn()
}
