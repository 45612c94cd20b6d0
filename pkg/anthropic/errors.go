package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/sells-group/proposal-cli/pkg/backend"
)

const providerName = "anthropic"

// classify folds an SDK failure into the backend error kinds. Context
// cancellation passes through untouched so callers can tell a stopped run
// from a failed request.
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return &backend.RateLimitError{
				Provider:   providerName,
				RetryAfter: retryAfterHint(apiErr.Response),
			}
		case apiErr.StatusCode == http.StatusRequestEntityTooLarge:
			return &backend.PayloadTooLargeError{Provider: providerName}
		case apiErr.StatusCode == http.StatusRequestTimeout, apiErr.StatusCode >= 500:
			// 529 overloaded lands here too.
			return &backend.TransientError{Provider: providerName, Err: err}
		default:
			return &backend.FatalError{Provider: providerName, Err: err}
		}
	}

	// Deadline blowouts and transport drops are worth another try.
	return &backend.TransientError{Provider: providerName, Err: err}
}

// retryAfterHint reads the Retry-After header, accepting both the seconds
// and HTTP-date forms. Returns zero when absent or unparseable.
func retryAfterHint(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(raw); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
