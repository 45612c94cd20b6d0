package anthropic

import (
	"context"
	"strings"

	"github.com/sells-group/proposal-cli/pkg/backend"
)

// defaultMaxTokens bounds completions when the caller does not say.
const defaultMaxTokens = 1024

// Generator adapts Client to the backend generation contract.
type Generator struct {
	client      Client
	cacheSystem bool
}

// NewGenerator creates a Generator backed by the real API. The shared
// system prompt is cache-controlled.
func NewGenerator(apiKey string) *Generator {
	return &Generator{client: NewClient(apiKey), cacheSystem: true}
}

// NewGeneratorWithClient wires a custom client, for tests.
func NewGeneratorWithClient(c Client) *Generator {
	return &Generator{client: c}
}

// Provider implements backend.Generator.
func (g *Generator) Provider() string { return providerName }

// Generate implements backend.Generator. Content blocks other than text
// are dropped from the response.
func (g *Generator) Generate(ctx context.Context, model string, req backend.GenerateRequest) (*backend.GenerateResponse, error) {
	mreq := MessageRequest{
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Messages:    []Message{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
	}
	if mreq.MaxTokens <= 0 {
		mreq.MaxTokens = defaultMaxTokens
	}
	if req.System != "" {
		if g.cacheSystem {
			mreq.System = BuildCachedSystemBlocks(req.System)
		} else {
			mreq.System = []SystemBlock{{Text: req.System}}
		}
	}

	resp, err := g.client.CreateMessage(ctx, mreq)
	if err != nil {
		return nil, classify(err)
	}

	var text strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			text.WriteString(b.Text)
		}
	}
	return &backend.GenerateResponse{
		Text:  text.String(),
		Model: resp.Model,
		Usage: backend.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}, nil
}
