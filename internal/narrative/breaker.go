package narrative

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/resilience"
	"github.com/sells-group/proposal-cli/pkg/backend"
)

// GuardedGenerator wraps a Generator with a circuit breaker. Long-running
// callers (the webhook server) use it so a hard-down provider fails slot
// fills fast instead of waiting out every retry on every request.
//
// Only transport-level failures trip the breaker. Rate limits belong to
// the fallback policy and fatal errors to the caller; neither says
// anything about provider health.
type GuardedGenerator struct {
	inner backend.Generator
	cb    *resilience.CircuitBreaker
}

// Guard wraps gen with a circuit breaker built from cfg.
func Guard(gen backend.Generator, cfg resilience.CircuitBreakerConfig) *GuardedGenerator {
	provider := gen.Provider()
	cfg.ShouldTrip = backend.IsTransient
	cfg.OnStateChange = func(from, to resilience.CircuitState) {
		zap.L().Warn("narrative: provider circuit state change",
			zap.String("provider", provider),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
	return &GuardedGenerator{inner: gen, cb: resilience.NewCircuitBreaker(cfg)}
}

// Provider reports the wrapped generator's provider name.
func (g *GuardedGenerator) Provider() string { return g.inner.Provider() }

// Generate runs the request through the breaker. When the circuit is
// open it returns resilience.ErrCircuitOpen without touching the
// provider; the executor fails the slot and the sentinel survives.
func (g *GuardedGenerator) Generate(ctx context.Context, mdl string, req backend.GenerateRequest) (*backend.GenerateResponse, error) {
	return resilience.ExecuteVal(ctx, g.cb, func(ctx context.Context) (*backend.GenerateResponse, error) {
		return g.inner.Generate(ctx, mdl, req)
	})
}
