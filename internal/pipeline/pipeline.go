// Package pipeline orchestrates a proposal-generation run: price the
// audit, lay out delivery phases, assemble the document, fill narrative
// slots, and record the outcome in the run ledger.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/assemble"
	"github.com/sells-group/proposal-cli/internal/config"
	"github.com/sells-group/proposal-cli/internal/cost"
	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/internal/narrative"
	"github.com/sells-group/proposal-cli/internal/phases"
	"github.com/sells-group/proposal-cli/internal/placeholder"
	"github.com/sells-group/proposal-cli/internal/pricing"
	"github.com/sells-group/proposal-cli/internal/store"
)

// Options adjusts a single run.
type Options struct {
	Pricing  pricing.Options
	Assemble assemble.Options

	// SkipNarrative leaves every slot pending. The document still carries
	// its sentinels and the run is recorded as partial.
	SkipNarrative bool
}

// Result is the in-memory outcome of a run. It carries the full breakdown
// and document; the ledger stores a summarized RunResult.
type Result struct {
	RunID     string
	Status    model.RunStatus
	Breakdown *model.PricingBreakdown
	Document  *model.ProposalDocument
	Slots     model.SlotStats
	Usage     model.Usage
	CostUSD   float64
	Warnings  []string
}

// Pipeline wires the stages of proposal generation.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	engine   *pricing.Engine
	builder  *phases.Builder
	asm      *assemble.Assembler
	exec     *narrative.Executor
	costCalc *cost.Calculator
}

// New creates a Pipeline with all dependencies. exec may be nil when the
// caller never fills narrative (the price-only paths).
func New(
	cfg *config.Config,
	st store.Store,
	engine *pricing.Engine,
	builder *phases.Builder,
	asm *assemble.Assembler,
	exec *narrative.Executor,
) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		engine:   engine,
		builder:  builder,
		asm:      asm,
		exec:     exec,
		costCalc: cost.NewCalculator(cfg.Pricing),
	}
}

// Run executes the full generation pipeline for one audit extract.
//
// Pricing, phase, and assembly failures abort the run; narrative failures
// do not. A document whose slots could not all be resolved is returned
// with its sentinels intact and the run recorded as partial.
func (p *Pipeline) Run(ctx context.Context, extract *model.AuditExtract, opts Options) (*Result, error) {
	log := zap.L().With(zap.String("client", extract.Client.Name))
	log.Info("pipeline: starting proposal generation")

	result := &Result{}

	// Create run record.
	run, err := p.store.CreateRun(ctx, extract.Client.Name)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	result.RunID = run.ID

	// Update status helper.
	setStatus := func(status model.RunStatus) {
		result.Status = status
		if statusErr := p.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: failed to update status", zap.Error(statusErr))
		}
	}

	// Phase tracking helper.
	trackPhase := func(name string, fn func() error) error {
		if _, phaseErr := p.store.CreatePhase(ctx, run.ID, name); phaseErr != nil {
			log.Warn("pipeline: failed to create phase", zap.String("phase", name), zap.Error(phaseErr))
		}

		start := time.Now()
		fnErr := fn()
		duration := time.Since(start).Milliseconds()

		var msg string
		if fnErr != nil {
			msg = fnErr.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else {
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
			)
		}

		if completeErr := p.store.CompletePhase(ctx, run.ID, name, msg); completeErr != nil {
			log.Warn("pipeline: failed to complete phase", zap.String("phase", name), zap.Error(completeErr))
		}
		return fnErr
	}

	setStatus(model.RunStatusRunning)

	// ===== Phase 1: Pricing =====
	var breakdown *model.PricingBreakdown
	if err := trackPhase("1_price", func() error {
		b, calcErr := p.engine.Calculate(extract, opts.Pricing)
		if calcErr != nil {
			return calcErr
		}
		breakdown = b
		return nil
	}); err != nil {
		p.abort(ctx, run.ID, err, log)
		result.Status = model.RunStatusFailed
		return result, eris.Wrap(err, "pipeline: price")
	}
	result.Breakdown = breakdown

	// ===== Phase 2: Delivery phases =====
	var phaseList []model.Phase
	_ = trackPhase("2_phases", func() error {
		phaseList = p.builder.Build(extract, breakdown, opts.Pricing.Timeline)
		return nil
	})

	// ===== Phase 3: Assembly =====
	var doc *model.ProposalDocument
	_ = trackPhase("3_assemble", func() error {
		doc = p.asm.Assemble(extract, breakdown, phaseList, opts.Assemble)
		return nil
	})
	result.Document = doc
	result.Slots.Total = len(placeholder.Slots(doc))

	// ===== Phase 4: Narrative =====
	if opts.SkipNarrative || p.exec == nil {
		log.Info("pipeline: narrative skipped", zap.Int("pending_slots", result.Slots.Total))
		result.Warnings = append(result.Warnings, "narrative generation skipped")
	} else {
		// Narrative failures never fail the run; unresolved slots keep
		// their sentinels and the status reflects the gap.
		_ = trackPhase("4_narrative", func() error {
			res, fillErr := p.exec.Fill(ctx, doc)
			if res != nil {
				result.Slots = res.Stats
				result.Usage = res.Usage
				result.CostUSD = p.costCalc.FillTotal(p.cfg.Narrative.Provider, res.UsageByModel)
				result.Warnings = append(result.Warnings, res.Warnings...)
			}
			return fillErr
		})
	}

	// Finalize.
	status := model.RunStatusComplete
	if result.Slots.Resolved < result.Slots.Total {
		status = model.RunStatusPartial
	}
	setStatus(status)

	runResult := &model.RunResult{
		RunID:          run.ID,
		ProposalNumber: doc.Meta.ProposalNumber,
		FinalPrice:     breakdown.FinalPrice,
		Subtotal:       breakdown.Subtotal,
		Slots:          result.Slots,
		Usage:          result.Usage,
		CostUSD:        result.CostUSD,
		Warnings:       result.Warnings,
		Document:       doc,
	}
	if saveErr := p.store.UpdateRunResult(ctx, run.ID, status, runResult); saveErr != nil {
		log.Warn("pipeline: failed to save run result", zap.Error(saveErr))
	}

	log.Info("pipeline: proposal generation complete",
		zap.String("run_id", run.ID),
		zap.String("proposal", doc.Meta.ProposalNumber),
		zap.String("status", string(status)),
		zap.Int64("final_price", breakdown.FinalPrice),
		zap.Int("slots_resolved", result.Slots.Resolved),
		zap.Int("slots_total", result.Slots.Total),
		zap.Float64("cost_usd", result.CostUSD),
	)

	return result, nil
}

// abort marks the run failed; best effort, the caller already has the
// real error.
func (p *Pipeline) abort(ctx context.Context, runID string, err error, log *zap.Logger) {
	if failErr := p.store.FailRun(ctx, runID, err.Error()); failErr != nil {
		log.Warn("pipeline: failed to mark run failed", zap.Error(failErr))
	}
}
