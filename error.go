package searchqa

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Application error codes.
//
// Permanent codes abort retry loops immediately. Transient codes describe
// failures that may resolve on their own and are worth another attempt.
const (
	EINTERNAL     = "internal"
	EINVALID      = "invalid"
	ENOTFOUND     = "not_found"
	EUNAUTHORIZED = "unauthorized"

	ETIMEOUT     = "timeout"
	ERATELIMIT   = "rate_limit"
	EUNAVAILABLE = "unavailable"
	ENORESULTS   = "no_results"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("searchqa error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsTransient reports whether err is worth retrying.
//
// Errors carrying a transient code, network timeouts, expired deadlines and
// errors without an application code are transient. Errors with a permanent
// code (EINVALID, ENOTFOUND, EUNAUTHORIZED, EINTERNAL) and canceled contexts
// are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var e *Error
	if !errors.As(err, &e) {
		return true
	}
	switch e.Code {
	case ETIMEOUT, ERATELIMIT, EUNAVAILABLE, ENORESULTS:
		return true
	default:
		return false
	}
}
