// Package batch answers a list of questions and writes one answer per
// question, in input order, to an AnswerSink.
package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/searchqa"
	"golang.org/x/sync/errgroup"
)

// PlaceholderAnswer is recorded for a question whose answerer failed.
const PlaceholderAnswer = "An error occurred while answering this question."

// Summary reports what a run did.
type Summary struct {
	Total    int
	Answered int
	Resumed  int // Taken from the AnswerStore without calling the answerer
	Failed   int // Recorded as PlaceholderAnswer
	Duration time.Duration
}

// Runner answers questions for one student. Questions are independent; with
// Concurrency > 1 several are answered at once, but the sink always receives
// answers in input order, one Write at a time.
type Runner struct {
	Answerer searchqa.Answerer

	// Store, if set, is consulted before answering and updated after.
	Store searchqa.AnswerStore

	// Concurrency is the number of questions answered at once. Values
	// below 1 mean sequential processing.
	Concurrency int

	Logger *slog.Logger
}

// Run answers questions in order and writes them to sink. The sink is
// committed on success and aborted if writing fails or ctx is canceled.
// Individual question failures never stop the run.
func (r *Runner) Run(ctx context.Context, studentID string, questions []*searchqa.Question, sink searchqa.AnswerSink) (*Summary, error) {
	begin := time.Now()
	summary := &Summary{Total: len(questions)}

	var mu sync.Mutex
	count := func(o outcome) {
		mu.Lock()
		defer mu.Unlock()
		switch o {
		case outcomeAnswered:
			summary.Answered++
		case outcomeResumed:
			summary.Resumed++
		case outcomeFailed:
			summary.Failed++
		}
	}

	w := &orderedWriter{sink: sink, pending: make(map[int]*searchqa.Answer)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Concurrency, 1))
	for i, q := range questions {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, o := r.answer(gctx, studentID, q)
			count(o)
			return w.put(gctx, i, a)
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		r.abort(studentID, sink)
		summary.Duration = time.Since(begin)
		return summary, err
	}
	if err := sink.Commit(); err != nil {
		summary.Duration = time.Since(begin)
		return summary, fmt.Errorf("commit answers: %w", err)
	}

	summary.Duration = time.Since(begin)
	r.logger().Info("batch complete",
		"student", studentID,
		"total", summary.Total,
		"answered", summary.Answered,
		"resumed", summary.Resumed,
		"failed", summary.Failed,
		"duration", summary.Duration,
	)
	return summary, nil
}

func (r *Runner) abort(studentID string, sink searchqa.AnswerSink) {
	if err := sink.Abort(); err != nil {
		r.logger().Error("abort output", "student", studentID, "err", err)
	}
}

type outcome int

const (
	outcomeAnswered outcome = iota
	outcomeResumed
	outcomeFailed
)

// answer produces exactly one answer for q, whatever the answerer does.
func (r *Runner) answer(ctx context.Context, studentID string, q *searchqa.Question) (*searchqa.Answer, outcome) {
	if r.Store != nil {
		a, err := r.Store.FindAnswer(ctx, studentID, q)
		if err == nil {
			r.logger().Debug("resumed answer", "student", studentID, "question", q.ID)
			return a, outcomeResumed
		}
		if searchqa.ErrorCode(err) != searchqa.ENOTFOUND {
			r.logger().Warn("answer lookup failed", "student", studentID, "question", q.ID, "err", err)
		}
	}

	a, err := r.safeAnswer(ctx, q)
	if err != nil {
		r.logger().Error("question failed", "student", studentID, "question", q.ID, "err", err)
		return &searchqa.Answer{QuestionID: q.ID, Text: PlaceholderAnswer}, outcomeFailed
	}
	a.QuestionID = q.ID

	if r.Store != nil {
		if err := r.Store.SaveAnswer(ctx, studentID, q, a); err != nil {
			r.logger().Warn("save answer failed", "student", studentID, "question", q.ID, "err", err)
		}
	}
	return a, outcomeAnswered
}

// safeAnswer converts a panic in the answerer into an error.
func (r *Runner) safeAnswer(ctx context.Context, q *searchqa.Question) (a *searchqa.Answer, err error) {
	defer func() {
		if p := recover(); p != nil {
			a, err = nil, searchqa.Errorf(searchqa.EINTERNAL, "panic answering question %d: %v", q.ID, p)
		}
	}()

	a, err = r.Answerer.Answer(ctx, q)
	if err == nil && a == nil {
		err = searchqa.Errorf(searchqa.EINTERNAL, "no answer for question %d", q.ID)
	}
	return a, err
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r.Logger
}

// orderedWriter forwards answers to the sink by input index, holding back
// answers that complete before their predecessors.
type orderedWriter struct {
	mu      sync.Mutex
	sink    searchqa.AnswerSink
	pending map[int]*searchqa.Answer
	next    int
}

func (w *orderedWriter) put(ctx context.Context, i int, a *searchqa.Answer) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[i] = a
	for {
		a, ok := w.pending[w.next]
		if !ok {
			return nil
		}
		delete(w.pending, w.next)
		if err := w.sink.Write(ctx, a); err != nil {
			return fmt.Errorf("write answer %d: %w", a.QuestionID, err)
		}
		w.next++
	}
}
