// Package backend defines the generation contract the narrative layer
// speaks. Adapters translate provider SDKs into this surface and fold
// every failure into the error kinds in errors.go, so callers never see a
// raw SDK error.
package backend

import "context"

// GenerateRequest is a single-turn completion request.
type GenerateRequest struct {
	System      string
	Prompt      string
	MaxTokens   int64
	Temperature *float64
}

// Usage counts billable tokens for one request.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// GenerateResponse carries the completion text, the model that actually
// served it, and token usage.
type GenerateResponse struct {
	Text  string
	Model string
	Usage Usage
}

// Generator produces one completion per call against a named model.
// Implementations are safe for concurrent use.
type Generator interface {
	// Provider names the backing service: "anthropic" or "gemini".
	Provider() string
	Generate(ctx context.Context, model string, req GenerateRequest) (*GenerateResponse, error)
}
