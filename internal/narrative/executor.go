package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/proposal-cli/internal/config"
	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/internal/placeholder"
	"github.com/sells-group/proposal-cli/internal/resilience"
	"github.com/sells-group/proposal-cli/pkg/backend"
)

const (
	defaultBatchSize      = 5
	defaultRequestTimeout = 45 * time.Second
)

// Result summarizes a fill run. Usage is split per model so spend can be
// attributed at each model's own rate.
type Result struct {
	Stats        model.SlotStats
	Usage        model.Usage
	UsageByModel map[string]model.Usage
	Warnings     []string
}

// Executor fills a document's pending slots in fixed-size batches. Slots
// in a batch run concurrently; the next batch starts only after every
// slot in the previous one settled. Failures never abort the run: a slot
// that cannot be filled keeps its sentinel and is reported as a warning.
type Executor struct {
	gen     backend.Generator
	policy  *Policy
	catalog *Catalog

	batchSize int
	timeout   time.Duration
	limiter   *rate.Limiter
	retry     resilience.RetryConfig
}

// NewExecutor wires a generation backend, its fallback policy, and a
// prompt catalog into an executor configured per cfg.
func NewExecutor(gen backend.Generator, policy *Policy, catalog *Catalog, cfg config.NarrativeConfig) *Executor {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	timeout := time.Duration(cfg.RequestTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	// The limiter paces batch starts. The first Wait spends the stored
	// token, so only gaps between batches pay the delay.
	every := time.Duration(cfg.BatchDelayMillis) * time.Millisecond
	limiter := rate.NewLimiter(rate.Inf, 1)
	if every > 0 {
		limiter = rate.NewLimiter(rate.Every(every), 1)
	}

	retry := resilience.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxAttempts = cfg.MaxRetries
	}
	retry.ShouldRetry = backend.IsTransient
	retry.OnRetry = resilience.RetryLogger(gen.Provider(), "generate")

	return &Executor{
		gen:       gen,
		policy:    policy,
		catalog:   catalog,
		batchSize: batch,
		timeout:   timeout,
		limiter:   limiter,
		retry:     retry,
	}
}

// Fill resolves the document's pending slots in place and reports what
// happened. The document is usable on every return path; the error is
// non-nil only when the context ended before all slots settled.
func (e *Executor) Fill(ctx context.Context, doc *model.ProposalDocument) (*Result, error) {
	slots := placeholder.Slots(doc)
	res := &Result{UsageByModel: make(map[string]model.Usage)}
	res.Stats.Total = len(slots)
	if len(slots) == 0 {
		return res, nil
	}

	zap.L().Info("narrative: filling slots",
		zap.Int("slots", len(slots)),
		zap.Int("batch_size", e.batchSize),
		zap.String("provider", e.policy.Provider()),
	)

	type outcome struct {
		text  string
		model string
		usage backend.Usage
		err   error
	}
	outcomes := make([]outcome, len(slots))

	for start := 0; start < len(slots); start += e.batchSize {
		if err := e.limiter.Wait(ctx); err != nil {
			for i := start; i < len(slots); i++ {
				outcomes[i] = outcome{err: err}
			}
			break
		}

		end := min(start+e.batchSize, len(slots))
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(end - start)
		for i := start; i < end; i++ {
			g.Go(func() error {
				text, mdl, usage, err := e.fillSlot(gCtx, doc, slots[i])
				outcomes[i] = outcome{text: text, model: mdl, usage: usage, err: err}
				// Don't fail the group on individual slots; the batch
				// settles as a unit.
				return nil
			})
		}
		_ = g.Wait()
	}

	for i, s := range slots {
		o := outcomes[i]
		if o.err != nil {
			res.Stats.Failed++
			res.Warnings = append(res.Warnings, fmt.Sprintf("slot %s: %v", s.Path, o.err))
			zap.L().Warn("narrative: slot unresolved",
				zap.String("path", s.Path),
				zap.String("slot", s.Name),
				zap.Error(o.err),
			)
			continue
		}
		s.Text.Resolve(o.text)
		res.Stats.Resolved++
		res.Usage.Add(o.usage.InputTokens, o.usage.OutputTokens)
		mu := res.UsageByModel[o.model]
		mu.Add(o.usage.InputTokens, o.usage.OutputTokens)
		res.UsageByModel[o.model] = mu
	}

	zap.L().Info("narrative: fill complete",
		zap.Int("resolved", res.Stats.Resolved),
		zap.Int("failed", res.Stats.Failed),
		zap.Int("fallbacks", e.policy.FallbacksUsed()),
	)
	return res, ctx.Err()
}

// fillSlot runs one slot to completion: render the prompt, walk the
// model chain under the policy, clean the output. Transient faults retry
// on the same model; rate limits and oversized payloads consult the
// policy; anything else fails the slot.
func (e *Executor) fillSlot(ctx context.Context, doc *model.ProposalDocument, s placeholder.Slot) (string, string, backend.Usage, error) {
	var usage backend.Usage

	spec, err := e.catalog.Spec(s.Name)
	if err != nil {
		return "", "", usage, err
	}

	req := backend.GenerateRequest{
		System:      spec.System,
		Prompt:      spec.Render(placeholder.SlotContext(doc, s)),
		MaxTokens:   spec.MaxTokens,
		Temperature: &spec.Temperature,
	}

	for {
		mdl, err := e.policy.Model()
		if err != nil {
			return "", "", usage, err
		}

		resp, err := e.generate(ctx, mdl, req)
		if err == nil {
			usage = resp.Usage
			text, warns := Process(spec, resp.Text)
			for _, w := range warns {
				zap.L().Warn("narrative: constraint miss",
					zap.String("slot", s.Name),
					zap.String("path", s.Path),
					zap.String("prompt", spec.ID),
					zap.String("detail", w),
				)
			}
			if strings.TrimSpace(text) == "" {
				return "", "", usage, fmt.Errorf("%s returned empty output", mdl)
			}
			return text, resp.Model, usage, nil
		}

		if rl, ok := backend.AsRateLimit(err); ok {
			if wait := e.policy.OnRateLimit(mdl, rl.RetryAfter); wait > 0 {
				zap.L().Info("narrative: rate limited, holding model",
					zap.String("model", mdl),
					zap.Duration("wait", wait),
				)
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return "", "", usage, ctx.Err()
				case <-timer.C:
				}
			}
			continue
		}
		if backend.IsPayloadTooLarge(err) {
			e.policy.OnPayloadTooLarge(mdl)
			continue
		}
		return "", "", usage, err
	}
}

func (e *Executor) generate(ctx context.Context, mdl string, req backend.GenerateRequest) (*backend.GenerateResponse, error) {
	return resilience.DoVal(ctx, e.retry, func(ctx context.Context) (*backend.GenerateResponse, error) {
		reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()
		return e.gen.Generate(reqCtx, mdl, req)
	})
}
