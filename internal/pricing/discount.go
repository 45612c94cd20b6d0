package pricing

import (
	"strings"

	"github.com/sells-group/proposal-cli/internal/config"
	"github.com/sells-group/proposal-cli/internal/model"
)

type discountCandidate struct {
	name string
	pct  float64
}

// discount evaluates every rule independently against the adjusted price,
// then combines the applicable ones under the stacking policy and clamps
// the result to the configured cap.
func (e *Engine) discount(adjusted float64, opts Options) model.Discount {
	rules := e.rates.Discounts
	var cands []discountCandidate

	for _, tier := range rules.VolumeTiers {
		if adjusted >= tier.MinPrice && (tier.MaxPrice == 0 || adjusted <= tier.MaxPrice) {
			if tier.Pct > 0 {
				cands = append(cands, discountCandidate{"volume:" + tier.Name, tier.Pct})
			}
			break
		}
	}
	if key := strings.ToLower(strings.TrimSpace(opts.Commitment)); key != "" {
		if pct, ok := rules.Commitment[key]; ok && pct > 0 {
			cands = append(cands, discountCandidate{"commitment:" + key, pct})
		}
	}
	if key := strings.ToLower(strings.TrimSpace(opts.PaymentTerms)); key != "" {
		if pct, ok := rules.EarlyPayment[key]; ok && pct > 0 {
			cands = append(cands, discountCandidate{"early_payment:" + key, pct})
		}
	}
	if opts.Referral && rules.ReferralPct > 0 {
		cands = append(cands, discountCandidate{"referral", rules.ReferralPct})
	}

	if len(cands) == 0 {
		return model.Discount{}
	}

	var total float64
	var applied []string
	switch rules.Stacking {
	case config.StackingAdditive:
		for _, c := range cands {
			total += c.pct
			applied = append(applied, c.name)
		}
	default: // highest_only; ties break on evaluation order
		best := cands[0]
		for _, c := range cands[1:] {
			if c.pct > best.pct {
				best = c
			}
		}
		total = best.pct
		applied = []string{best.name}
	}

	if rules.CapPct > 0 && total > rules.CapPct {
		total = rules.CapPct
	}

	return model.Discount{
		Pct:     total,
		Amount:  adjusted * total / 100,
		Applied: applied,
	}
}
