// Package gemini adapts the Google GenAI SDK to the backend generation
// contract.
package gemini

import (
	"context"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"

	"github.com/sells-group/proposal-cli/pkg/backend"
)

const providerName = "gemini"

// Generator implements backend.Generator over the Gemini API.
type Generator struct {
	client *genai.Client
}

// New creates a Generator talking to the Gemini API.
func New(ctx context.Context, apiKey string) (*Generator, error) {
	if apiKey == "" {
		return nil, eris.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	return &Generator{client: client}, nil
}

// Provider implements backend.Generator.
func (g *Generator) Provider() string { return providerName }

// Generate implements backend.Generator.
func (g *Generator) Generate(ctx context.Context, model string, req backend.GenerateRequest) (*backend.GenerateResponse, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), buildConfig(req))
	if err != nil {
		return nil, classify(err)
	}
	return fromResponse(model, resp), nil
}

func buildConfig(req backend.GenerateRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	return cfg
}

func fromResponse(model string, resp *genai.GenerateContentResponse) *backend.GenerateResponse {
	out := &backend.GenerateResponse{
		Text:  resp.Text(),
		Model: model,
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		out.Usage = backend.Usage{
			InputTokens:  int64(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out
}
