// Package retry provides a bounded exponential-backoff retry policy.
//
// A Policy moves through the states Idle -> Attempting(1) -> ... and ends in
// either Succeeded or Exhausted. Only transient errors advance to the next
// attempt; permanent errors exhaust the policy immediately.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/fwojciec/searchqa"
)

// Defaults used when the corresponding Policy field is zero.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
)

// State is a retry state machine state.
type State int

// Retry states.
const (
	Idle State = iota
	Attempting
	Succeeded
	Exhausted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Attempting:
		return "attempting"
	case Succeeded:
		return "succeeded"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Transition describes one state change.
// Attempt is the attempt number entered (Attempting) or ended on
// (Succeeded, Exhausted). Delay is the backoff slept before entering it.
type Transition struct {
	From    State
	To      State
	Attempt int
	Delay   time.Duration
	Err     error
}

// Operation is the unit of work being retried. attempt starts at 1.
type Operation func(ctx context.Context, attempt int) error

// ExhaustedError is returned when a Policy gives up.
type ExhaustedError struct {
	Attempts  int
	Permanent bool // Aborted on a non-transient error
	Err       error
}

func (e *ExhaustedError) Error() string {
	if e.Permanent {
		return fmt.Sprintf("aborted after %d attempt(s) on permanent error: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("exhausted after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Policy retries an Operation up to MaxAttempts times. The delay before
// attempt k (k >= 2) is BaseDelay * 2^(k-2), plus up to Jitter.
//
// A Policy holds no per-call state and is safe for concurrent use.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration

	// Transient classifies errors. Defaults to searchqa.IsTransient.
	Transient func(error) bool

	// Sleep waits for d or until ctx is done. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error

	// OnTransition, if set, is called on every state change.
	OnTransition func(Transition)
}

// Delay returns the backoff before the given attempt, without jitter.
// The first attempt is never delayed.
func (p *Policy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	return base << (attempt - 2)
}

// Execute runs op until it succeeds, fails permanently, or the attempt
// bound is reached. It returns the number of attempts made and nil on
// success or an *ExhaustedError carrying the last error.
//
// If ctx is done during a backoff the policy is exhausted early and the
// context error is joined to the last operation error.
func (p *Policy) Execute(ctx context.Context, op Operation) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	p.transition(Transition{From: Idle, To: Attempting, Attempt: 1})

	for attempt := 1; ; attempt++ {
		err := op(ctx, attempt)
		if err == nil {
			p.transition(Transition{From: Attempting, To: Succeeded, Attempt: attempt})
			return attempt, nil
		}

		if !p.isTransient(err) {
			p.transition(Transition{From: Attempting, To: Exhausted, Attempt: attempt, Err: err})
			return attempt, &ExhaustedError{Attempts: attempt, Permanent: true, Err: err}
		}

		if attempt >= maxAttempts {
			p.transition(Transition{From: Attempting, To: Exhausted, Attempt: attempt, Err: err})
			return attempt, &ExhaustedError{Attempts: attempt, Err: err}
		}

		delay := p.Delay(attempt + 1)
		if p.Jitter > 0 {
			delay += rand.N(p.Jitter)
		}

		if sleepErr := p.sleep(ctx, delay); sleepErr != nil {
			err = errors.Join(err, sleepErr)
			p.transition(Transition{From: Attempting, To: Exhausted, Attempt: attempt, Err: err})
			return attempt, &ExhaustedError{Attempts: attempt, Err: err}
		}

		p.transition(Transition{From: Attempting, To: Attempting, Attempt: attempt + 1, Delay: delay, Err: err})
	}
}

func (p *Policy) isTransient(err error) bool {
	if p.Transient != nil {
		return p.Transient(err)
	}
	return searchqa.IsTransient(err)
}

func (p *Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

func (p *Policy) transition(t Transition) {
	if p.OnTransition != nil {
		p.OnTransition(t)
	}
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
