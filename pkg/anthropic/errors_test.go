package anthropic

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/proposal-cli/pkg/backend"
)

// apiError builds an SDK error carrying a status code and optional
// response headers. Request and Response are always populated so Error()
// can render.
func apiError(status int, header http.Header) *sdk.Error {
	if header == nil {
		header = http.Header{}
	}
	return &sdk.Error{
		StatusCode: status,
		Request:    httptest.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil),
		Response:   &http.Response{StatusCode: status, Header: header},
	}
}

func TestClassifyRateLimited(t *testing.T) {
	err := classify(apiError(http.StatusTooManyRequests, http.Header{"Retry-After": []string{"30"}}))

	rle, ok := backend.AsRateLimit(err)
	require.True(t, ok)
	assert.Equal(t, "anthropic", rle.Provider)
	assert.Equal(t, 30*time.Second, rle.RetryAfter)
}

func TestClassifyRateLimitedNoHint(t *testing.T) {
	err := classify(apiError(http.StatusTooManyRequests, nil))

	rle, ok := backend.AsRateLimit(err)
	require.True(t, ok)
	assert.Zero(t, rle.RetryAfter)
}

func TestClassifyPayloadTooLarge(t *testing.T) {
	err := classify(apiError(http.StatusRequestEntityTooLarge, nil))
	assert.True(t, backend.IsPayloadTooLarge(err))
}

func TestClassifyTransient(t *testing.T) {
	for _, status := range []int{http.StatusRequestTimeout, http.StatusInternalServerError, http.StatusServiceUnavailable, 529} {
		err := classify(apiError(status, nil))
		assert.True(t, backend.IsTransient(err), "status %d should be transient", status)
	}
}

func TestClassifyFatal(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound} {
		err := classify(apiError(status, nil))
		assert.True(t, backend.IsFatal(err), "status %d should be fatal", status)
	}
}

func TestClassifyNonAPIError(t *testing.T) {
	err := classify(errors.New("connection reset by peer"))
	assert.True(t, backend.IsTransient(err))

	err = classify(context.DeadlineExceeded)
	assert.True(t, backend.IsTransient(err))
}

func TestClassifyCancellationPassesThrough(t *testing.T) {
	err := classify(context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, backend.IsTransient(err))
}

func TestRetryAfterHint(t *testing.T) {
	assert.Zero(t, retryAfterHint(nil))
	assert.Zero(t, retryAfterHint(&http.Response{Header: http.Header{}}))

	resp := &http.Response{Header: http.Header{"Retry-After": []string{"45"}}}
	assert.Equal(t, 45*time.Second, retryAfterHint(resp))

	resp = &http.Response{Header: http.Header{"Retry-After": []string{"not-a-number"}}}
	assert.Zero(t, retryAfterHint(resp))

	// HTTP-date form: a moment in the future yields a positive wait.
	at := time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)
	resp = &http.Response{Header: http.Header{"Retry-After": []string{at}}}
	hint := retryAfterHint(resp)
	assert.Greater(t, hint, 80*time.Second)
	assert.LessOrEqual(t, hint, 90*time.Second)

	// A date in the past means no wait.
	at = time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat)
	resp = &http.Response{Header: http.Header{"Retry-After": []string{at}}}
	assert.Zero(t, retryAfterHint(resp))
}
