package searchqa_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/searchqa"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := searchqa.Errorf(searchqa.ENOTFOUND, "answer %q not found", "7")

	assert.Equal(t, searchqa.ENOTFOUND, searchqa.ErrorCode(err))
	assert.Equal(t, "answer \"7\" not found", searchqa.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, searchqa.ErrorCode(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("search: %w", searchqa.Errorf(searchqa.ERATELIMIT, "slow down"))

	assert.Equal(t, searchqa.ERATELIMIT, searchqa.ErrorCode(err))
}

func TestErrorCode_PlainErrorIsInternal(t *testing.T) {
	t.Parallel()

	assert.Equal(t, searchqa.EINTERNAL, searchqa.ErrorCode(errors.New("boom")))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, searchqa.ErrorMessage(nil))
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout code", searchqa.Errorf(searchqa.ETIMEOUT, "x"), true},
		{"rate limit code", searchqa.Errorf(searchqa.ERATELIMIT, "x"), true},
		{"unavailable code", searchqa.Errorf(searchqa.EUNAVAILABLE, "x"), true},
		{"empty result set", searchqa.Errorf(searchqa.ENORESULTS, "x"), true},
		{"malformed query", searchqa.Errorf(searchqa.EINVALID, "x"), false},
		{"auth failure", searchqa.Errorf(searchqa.EUNAUTHORIZED, "x"), false},
		{"not found", searchqa.Errorf(searchqa.ENOTFOUND, "x"), false},
		{"explicit internal", searchqa.Errorf(searchqa.EINTERNAL, "x"), false},
		{"unclassified", errors.New("connection reset"), true},
		{"net timeout", timeoutError{}, true},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"wrapped canceled", fmt.Errorf("fetch: %w", context.Canceled), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, searchqa.IsTransient(tt.err))
		})
	}
}
