package batch_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/searchqa"
	"github.com/fwojciec/searchqa/batch"
	"github.com/fwojciec/searchqa/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySink collects written answers.
type memorySink struct {
	mu        sync.Mutex
	answers   []*searchqa.Answer
	committed bool
	aborted   bool
	writeErr  error
}

func (s *memorySink) mock() *mock.AnswerSink {
	return &mock.AnswerSink{
		WriteFn: func(_ context.Context, a *searchqa.Answer) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.writeErr != nil {
				return s.writeErr
			}
			s.answers = append(s.answers, a)
			return nil
		},
		CommitFn: func() error {
			s.committed = true
			return nil
		},
		AbortFn: func() error {
			s.aborted = true
			return nil
		},
	}
}

func (s *memorySink) lines() []string {
	var lines []string
	for _, a := range s.answers {
		lines = append(lines, fmt.Sprintf("%d:%s", a.QuestionID, a.Text))
	}
	return lines
}

func questions(texts ...string) []*searchqa.Question {
	qs := make([]*searchqa.Question, len(texts))
	for i, text := range texts {
		qs[i] = &searchqa.Question{ID: i + 1, Text: text}
	}
	return qs
}

func echoAnswerer() *mock.Answerer {
	return &mock.Answerer{
		AnswerFn: func(_ context.Context, q *searchqa.Question) (*searchqa.Answer, error) {
			return &searchqa.Answer{QuestionID: q.ID, Text: "answer to " + q.Text}, nil
		},
	}
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("writes one answer per question in input order", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		r := &batch.Runner{Answerer: echoAnswerer()}

		summary, err := r.Run(context.Background(), "s1", questions("a", "b", "c"), sink.mock())

		require.NoError(t, err)
		assert.Equal(t, []string{"1:answer to a", "2:answer to b", "3:answer to c"}, sink.lines())
		assert.True(t, sink.committed)
		assert.Equal(t, 3, summary.Total)
		assert.Equal(t, 3, summary.Answered)
	})

	t.Run("records placeholder and continues after an error", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		r := &batch.Runner{Answerer: &mock.Answerer{
			AnswerFn: func(_ context.Context, q *searchqa.Question) (*searchqa.Answer, error) {
				if q.ID == 2 {
					return nil, errors.New("boom")
				}
				return &searchqa.Answer{Text: q.Text}, nil
			},
		}}

		summary, err := r.Run(context.Background(), "s1", questions("a", "b", "c"), sink.mock())

		require.NoError(t, err)
		assert.Equal(t, []string{"1:a", "2:" + batch.PlaceholderAnswer, "3:c"}, sink.lines())
		assert.Equal(t, 1, summary.Failed)
		assert.Equal(t, 2, summary.Answered)
	})

	t.Run("records placeholder after a panic", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		r := &batch.Runner{Answerer: &mock.Answerer{
			AnswerFn: func(_ context.Context, q *searchqa.Question) (*searchqa.Answer, error) {
				if q.ID == 1 {
					panic("unexpected")
				}
				return &searchqa.Answer{Text: q.Text}, nil
			},
		}}

		_, err := r.Run(context.Background(), "s1", questions("a", "b"), sink.mock())

		require.NoError(t, err)
		assert.Equal(t, []string{"1:" + batch.PlaceholderAnswer, "2:b"}, sink.lines())
	})

	t.Run("preserves input order with concurrent answering", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		r := &batch.Runner{
			Concurrency: 4,
			Answerer: &mock.Answerer{
				AnswerFn: func(_ context.Context, q *searchqa.Question) (*searchqa.Answer, error) {
					// Earlier questions finish later.
					time.Sleep(time.Duration(10-q.ID) * time.Millisecond)
					return &searchqa.Answer{Text: q.Text}, nil
				},
			},
		}

		_, err := r.Run(context.Background(), "s1", questions("a", "b", "c", "d", "e", "f", "g", "h"), sink.mock())

		require.NoError(t, err)
		assert.Equal(t, []string{"1:a", "2:b", "3:c", "4:d", "5:e", "6:f", "7:g", "8:h"}, sink.lines())
	})

	t.Run("produces identical output on repeated runs", func(t *testing.T) {
		t.Parallel()

		qs := questions("What is the capital of France?", "Who won the 2024 election?")
		first, second := &memorySink{}, &memorySink{}
		r := &batch.Runner{Answerer: echoAnswerer(), Concurrency: 2}

		_, err := r.Run(context.Background(), "s1", qs, first.mock())
		require.NoError(t, err)
		_, err = r.Run(context.Background(), "s1", qs, second.mock())
		require.NoError(t, err)

		assert.Equal(t, first.lines(), second.lines())
	})

	t.Run("reuses stored answers without calling the answerer", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		var saved []int
		store := &mock.AnswerStore{
			FindAnswerFn: func(_ context.Context, studentID string, q *searchqa.Question) (*searchqa.Answer, error) {
				assert.Equal(t, "s7", studentID)
				if q.ID == 1 {
					return &searchqa.Answer{QuestionID: 1, Text: "stored"}, nil
				}
				return nil, searchqa.Errorf(searchqa.ENOTFOUND, "no answer")
			},
			SaveAnswerFn: func(_ context.Context, _ string, q *searchqa.Question, _ *searchqa.Answer) error {
				saved = append(saved, q.ID)
				return nil
			},
		}
		sink := &memorySink{}
		r := &batch.Runner{
			Store: store,
			Answerer: &mock.Answerer{
				AnswerFn: func(_ context.Context, q *searchqa.Question) (*searchqa.Answer, error) {
					calls.Add(1)
					return &searchqa.Answer{Text: "fresh"}, nil
				},
			},
		}

		summary, err := r.Run(context.Background(), "s7", questions("a", "b"), sink.mock())

		require.NoError(t, err)
		assert.Equal(t, []string{"1:stored", "2:fresh"}, sink.lines())
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, []int{2}, saved)
		assert.Equal(t, 1, summary.Resumed)
	})

	t.Run("does not store placeholder answers", func(t *testing.T) {
		t.Parallel()

		saves := 0
		store := &mock.AnswerStore{
			FindAnswerFn: func(context.Context, string, *searchqa.Question) (*searchqa.Answer, error) {
				return nil, searchqa.Errorf(searchqa.ENOTFOUND, "no answer")
			},
			SaveAnswerFn: func(context.Context, string, *searchqa.Question, *searchqa.Answer) error {
				saves++
				return nil
			},
		}
		r := &batch.Runner{
			Store: store,
			Answerer: &mock.Answerer{
				AnswerFn: func(context.Context, *searchqa.Question) (*searchqa.Answer, error) {
					return nil, errors.New("boom")
				},
			},
		}

		_, err := r.Run(context.Background(), "s1", questions("a"), (&memorySink{}).mock())

		require.NoError(t, err)
		assert.Equal(t, 0, saves)
	})

	t.Run("aborts the sink when a write fails", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{writeErr: errors.New("disk full")}
		r := &batch.Runner{Answerer: echoAnswerer()}

		_, err := r.Run(context.Background(), "s1", questions("a", "b"), sink.mock())

		require.Error(t, err)
		assert.True(t, sink.aborted)
		assert.False(t, sink.committed)
	})

	t.Run("aborts the sink when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		sink := &memorySink{}
		r := &batch.Runner{Answerer: echoAnswerer()}

		_, err := r.Run(ctx, "s1", questions("a"), sink.mock())

		require.ErrorIs(t, err, context.Canceled)
		assert.True(t, sink.aborted)
	})

	t.Run("logs abort failure and reports duration when canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		answerer := &mock.Answerer{
			AnswerFn: func(context.Context, *searchqa.Question) (*searchqa.Answer, error) {
				time.Sleep(time.Millisecond)
				cancel()
				return &searchqa.Answer{Text: "late"}, nil
			},
		}
		sink := &memorySink{}
		s := sink.mock()
		s.AbortFn = func() error { return errors.New("remove tmp: permission denied") }
		var logs bytes.Buffer
		r := &batch.Runner{Answerer: answerer, Logger: slog.New(slog.NewTextHandler(&logs, nil))}

		summary, err := r.Run(ctx, "s1", questions("a"), s)

		require.ErrorIs(t, err, context.Canceled)
		assert.GreaterOrEqual(t, summary.Duration, time.Millisecond)
		assert.Contains(t, logs.String(), "abort output")
		assert.Contains(t, logs.String(), "permission denied")
	})

	t.Run("commits an empty batch", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		r := &batch.Runner{Answerer: echoAnswerer()}

		summary, err := r.Run(context.Background(), "s1", nil, sink.mock())

		require.NoError(t, err)
		assert.True(t, sink.committed)
		assert.Equal(t, 0, summary.Total)
	})
}
