package gemini

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/genai"

	"github.com/sells-group/proposal-cli/pkg/backend"
)

// classify folds a GenAI failure into the backend error kinds. Gemini gives
// no usable retry hint on 429, so the rate-limit error carries none and the
// fallback policy switches models immediately.
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return &backend.RateLimitError{Provider: providerName}
		case apiErr.Code == http.StatusRequestEntityTooLarge:
			return &backend.PayloadTooLargeError{Provider: providerName}
		case apiErr.Code == http.StatusRequestTimeout, apiErr.Code >= 500:
			return &backend.TransientError{Provider: providerName, Err: err}
		default:
			return &backend.FatalError{Provider: providerName, Err: err}
		}
	}

	return &backend.TransientError{Provider: providerName, Err: err}
}
