package narrative

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/config"
)

// ExhaustedError reports that every model in a provider's chain was tried
// and rejected. Attempted preserves chain order.
type ExhaustedError struct {
	Provider  string
	Attempted []string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s models exhausted (attempted %s)", e.Provider, strings.Join(e.Attempted, ", "))
}

// Policy tracks which model serves the next request and decides how to
// react to provider pressure. One Policy spans a fill run and is shared
// by every slot goroutine in it, so a rate limit seen by one slot moves
// the whole run down the chain.
//
// Anthropic holds the current model through one rate limit, waiting out
// the server's retry hint (default wait when the hint is absent), and
// switches on the second. Gemini's per-model quotas make waiting useless,
// so it switches immediately. Oversized payloads switch immediately on
// both: the next model down accepts larger inputs or fails fast.
type Policy struct {
	mu        sync.Mutex
	provider  string
	models    []string
	idx       int
	waited    bool
	fallbacks int

	waitToRetry bool
	defaultWait time.Duration
	maxWait     time.Duration
}

// AnthropicPolicy builds the wait-then-switch policy over the configured
// Anthropic model chain.
func AnthropicPolicy(cfg config.AnthropicConfig) *Policy {
	return &Policy{
		provider:    "anthropic",
		models:      append([]string(nil), cfg.Models...),
		waitToRetry: true,
		defaultWait: time.Duration(cfg.RetryAfterSecs) * time.Second,
		maxWait:     time.Duration(cfg.MaxRetryWaitSecs) * time.Second,
	}
}

// GeminiPolicy builds the switch-immediately policy over the configured
// Gemini model chain.
func GeminiPolicy(cfg config.GeminiConfig) *Policy {
	return &Policy{
		provider: "gemini",
		models:   append([]string(nil), cfg.Models...),
	}
}

// PolicyFor selects the policy matching the configured narrative provider.
func PolicyFor(cfg *config.Config) (*Policy, error) {
	switch cfg.Narrative.Provider {
	case "anthropic":
		return AnthropicPolicy(cfg.Anthropic), nil
	case "gemini":
		return GeminiPolicy(cfg.Gemini), nil
	default:
		return nil, eris.Errorf("narrative: unknown provider %q", cfg.Narrative.Provider)
	}
}

// Provider names the backing service this policy schedules.
func (p *Policy) Provider() string { return p.provider }

// Model returns the model for the next request, or ExhaustedError once
// the chain has run out.
func (p *Policy) Model() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.idx >= len(p.models) {
		return "", &ExhaustedError{Provider: p.provider, Attempted: append([]string(nil), p.models...)}
	}
	return p.models[p.idx], nil
}

// FallbacksUsed counts model switches so far.
func (p *Policy) FallbacksUsed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fallbacks
}

// OnRateLimit records a rate limit on the named model and returns how
// long the caller should wait before its next attempt. Zero means the
// policy switched models instead; reports against a model the policy has
// already left are ignored.
func (p *Policy) OnRateLimit(model string, hint time.Duration) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.idx >= len(p.models) || p.models[p.idx] != model {
		return 0
	}
	if p.waitToRetry && !p.waited {
		wait := hint
		if wait <= 0 {
			wait = p.defaultWait
		}
		if p.maxWait > 0 && wait > p.maxWait {
			// A hint beyond the cap means the model is gone for this
			// run's lifetime. Treat it like a second strike.
			p.advanceLocked("retry hint over cap")
			return 0
		}
		p.waited = true
		return wait
	}
	p.advanceLocked("rate limited")
	return 0
}

// OnPayloadTooLarge records an oversized-payload rejection on the named
// model and switches immediately.
func (p *Policy) OnPayloadTooLarge(model string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.idx >= len(p.models) || p.models[p.idx] != model {
		return
	}
	p.advanceLocked("payload too large")
}

func (p *Policy) advanceLocked(reason string) {
	from := p.models[p.idx]
	p.idx++
	p.waited = false
	p.fallbacks++

	to := "none"
	if p.idx < len(p.models) {
		to = p.models[p.idx]
	}
	zap.L().Warn("narrative: switching model",
		zap.String("provider", p.provider),
		zap.String("from", from),
		zap.String("to", to),
		zap.String("reason", reason),
	)
}
