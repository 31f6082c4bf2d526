package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned before any provider call when the request is malformed
var ErrInvalidRequest = errors.New("invalid completion request")

// ErrorKind classifies completion failures for the HTTP layer
type ErrorKind string

// Failure kinds
const (
	KindRateLimited ErrorKind = "rate_limited"
	KindTimeout     ErrorKind = "timeout"
	KindCanceled    ErrorKind = "canceled"
	KindProvider    ErrorKind = "provider_error"
)

// Error is a classified provider failure
type Error struct {
	Kind       ErrorKind
	Provider   Provider
	StatusCode int // provider HTTP status when known
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err, or "" when err is not a classified completion error
func KindOf(err error) ErrorKind {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Kind
	}
	return ""
}

// IsRateLimited reports whether err is a provider rate-limit signal
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited
}

// IsTimeout reports whether err is a deadline expiry
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

// classify wraps err with its kind. Context errors win over provider
// status so a deadline hit mid-request always reports as a timeout.
func classify(p Provider, err error, statusCode int, rateLimited bool) *Error {
	kind := KindProvider
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.Is(err, context.Canceled):
		kind = KindCanceled
	case rateLimited || statusCode == 429:
		kind = KindRateLimited
	}
	return &Error{Kind: kind, Provider: p, StatusCode: statusCode, Err: err}
}
