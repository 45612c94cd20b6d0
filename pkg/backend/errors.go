package backend

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError reports provider throttling. RetryAfter is the server's
// hint, zero when the provider gave none.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limited, retry after %v", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("%s rate limited", e.Provider)
}

// PayloadTooLargeError reports an oversized request. Retrying the same
// payload cannot succeed; the caller must shrink it or skip the slot.
type PayloadTooLargeError struct {
	Provider string
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("%s rejected oversized payload", e.Provider)
}

// TransientError wraps a failure worth retrying on the same model:
// server-side errors, timeouts, dropped connections.
type TransientError struct {
	Provider string
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s transient failure: %v", e.Provider, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// FatalError wraps a failure no retry or model switch can fix: a bad
// request, an invalid key, a policy refusal.
type FatalError struct {
	Provider string
	Err      error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// AsRateLimit extracts the rate-limit detail from an error chain.
func AsRateLimit(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	ok := errors.As(err, &rle)
	return rle, ok
}

// IsPayloadTooLarge reports whether the chain contains an oversized-payload
// rejection.
func IsPayloadTooLarge(err error) bool {
	var ptl *PayloadTooLargeError
	return errors.As(err, &ptl)
}

// IsTransient reports whether the failure is worth retrying on the same
// model.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsFatal reports whether the failure is terminal for the request.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
