// Package pricing converts qualitative audit signals into an exact,
// internally-consistent price breakdown with auditable rounding and
// discount-stacking rules.
package pricing

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/config"
	"github.com/sells-group/proposal-cli/internal/model"
)

// Options are the run-time knobs for one calculation. Zero values mean
// "standard"; unknown keys degrade to neutral multipliers rather than
// failing.
type Options struct {
	Timeline     string // pressure key: standard, expedited, urgent, emergency
	Readiness    string // client-readiness key
	Sensitivity  string // explicit data-sensitivity override; empty infers from industry
	Commitment   string // commitment-discount key
	PaymentTerms string // early-payment-discount key
	Referral     bool
	EarlyAdopter *bool // nil follows the rate-table default
}

// Engine prices audit extracts against one read-only rate table set. Safe
// for concurrent use; Calculate is pure.
type Engine struct {
	rates *config.RateConfig
}

// New creates an Engine. The rate tables must already be validated.
func New(rates *config.RateConfig) *Engine {
	return &Engine{rates: rates}
}

// Calculate derives the full breakdown. It never fails on malformed
// optional input; the only error path is an internal reconciliation
// defect (ErrPricingInvariant).
func (e *Engine) Calculate(extract *model.AuditExtract, opts Options) (*model.PricingBreakdown, error) {
	rc := e.rates
	inc := rc.Rounding.Increment

	// Base price from classified effort.
	hours, tierCounts := e.estimateHours(extract)
	rate := e.weightedRate()
	base := hours * rate

	// Six-factor complexity multiplier.
	factors := e.factors(extract, opts)
	multiplier := factors.Product()
	adjusted := base * multiplier

	// Discounts, then the rounded subtotal.
	discount := e.discount(adjusted, opts)
	subtotal := RoundToIncrement(adjusted-discount.Amount, inc)

	milestones := e.splitMilestones(subtotal)

	// Credit and early-adopter back-calculation. The clamp to the project
	// floor runs after the percentage, so the displayed amount is derived
	// from the final price, not the other way around.
	credit := rc.AuditCredit
	afterCredit := subtotal - credit
	final := afterCredit
	ea := model.EarlyAdopter{}

	enabled := rc.EarlyAdopter.Enabled
	if opts.EarlyAdopter != nil {
		enabled = *opts.EarlyAdopter
	}
	if enabled {
		target := RoundToIncrement(float64(afterCredit)*(1-rc.EarlyAdopter.Pct/100), inc)
		if target < rc.Rounding.MinimumProjectValue {
			target = rc.Rounding.MinimumProjectValue
		}
		final = target
		ea = model.EarlyAdopter{
			Applied: true,
			Pct:     rc.EarlyAdopter.Pct,
			Amount:  afterCredit - final,
		}
	} else if final < rc.Rounding.MinimumProjectValue {
		// Floor still holds with the discount off; the difference is
		// back-calculated the same way so the breakdown reconciles.
		final = rc.Rounding.MinimumProjectValue
		ea.Amount = afterCredit - final
	}

	breakdown := &model.PricingBreakdown{
		Hours:         hours,
		WeightedRate:  rate,
		BasePrice:     base,
		Multiplier:    multiplier,
		Factors:       factors,
		AdjustedPrice: adjusted,
		Discount:      discount,
		Subtotal:      subtotal,
		AuditCredit:   credit,
		EarlyAdopter:  ea,
		FinalPrice:    final,
		Milestones:    milestones,
		Validation:    e.validateValue(extract, final),
	}

	if err := checkInvariants(breakdown, rc.Rounding.MinimumProjectValue); err != nil {
		return nil, err
	}

	zap.L().Info("pricing: breakdown computed",
		zap.String("client", extract.Client.Name),
		zap.Float64("hours", hours),
		zap.Float64("multiplier", multiplier),
		zap.Float64("discount_pct", discount.Pct),
		zap.Int64("subtotal", subtotal),
		zap.Int64("final_price", final),
		zap.Any("tier_counts", tierCounts),
	)

	return breakdown, nil
}

// splitMilestones allocates the subtotal across design/build/test by
// independent rounding; deploy takes the remainder so the legs always sum
// back exactly.
func (e *Engine) splitMilestones(subtotal int64) model.Milestones {
	split := e.rates.Milestones
	inc := e.rates.Rounding.Increment

	design := RoundToIncrement(float64(subtotal)*split.DesignPct/100, inc)
	build := RoundToIncrement(float64(subtotal)*split.BuildPct/100, inc)
	test := RoundToIncrement(float64(subtotal)*split.TestPct/100, inc)
	deploy := subtotal - design - build - test

	return model.Milestones{
		Design: model.MilestoneAllocation{Key: "design", Label: "Design & Architecture", Pct: split.DesignPct, Amount: design},
		Build:  model.MilestoneAllocation{Key: "build", Label: "Build & Integration", Pct: split.BuildPct, Amount: build},
		Test:   model.MilestoneAllocation{Key: "test", Label: "Testing & Hardening", Pct: split.TestPct, Amount: test},
		Deploy: model.MilestoneAllocation{Key: "deploy", Label: "Deployment & Handoff", Pct: split.DeployPct, Amount: deploy},
	}
}

// checkInvariants asserts the reconciliation guarantees. A failure here
// is a defect in this package.
func checkInvariants(b *model.PricingBreakdown, minValue int64) error {
	if sum := b.Milestones.Sum(); sum != b.Subtotal {
		return eris.Wrapf(ErrPricingInvariant, "milestone sum %d != subtotal %d", sum, b.Subtotal)
	}
	if got := b.Subtotal - b.AuditCredit - b.EarlyAdopter.Amount; got != b.FinalPrice {
		return eris.Wrapf(ErrPricingInvariant, "final price %d does not reconcile to %d", b.FinalPrice, got)
	}
	if b.FinalPrice < minValue {
		return eris.Wrapf(ErrPricingInvariant, "final price %d below minimum %d", b.FinalPrice, minValue)
	}
	return nil
}
