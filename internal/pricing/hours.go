package pricing

import (
	"strings"

	"github.com/sells-group/proposal-cli/internal/model"
)

// tierScanOrder checks the heaviest tiers first so a descriptor like
// "critical integration overhaul" lands on critical, not complex.
var tierScanOrder = []model.Tier{
	model.TierCritical,
	model.TierComplex,
	model.TierModerate,
	model.TierTrivial,
}

// ClassifyEffort buckets a free-text effort descriptor into a tier by
// substring match against the configured keyword lists. Unmatched or empty
// descriptors default to moderate.
func ClassifyEffort(descriptor string, keywords map[string][]string) model.Tier {
	desc := strings.ToLower(strings.TrimSpace(descriptor))
	if desc == "" {
		return model.TierModerate
	}
	for _, tier := range tierScanOrder {
		for _, kw := range keywords[string(tier)] {
			if kw != "" && strings.Contains(desc, kw) {
				return tier
			}
		}
	}
	return model.TierModerate
}

// estimateHours sums default hours per classified fix. With no fixes, the
// estimate falls back to category_count x moderate hours, where the count
// of distinct finding categories defaults to 2 when the audit names none.
func (e *Engine) estimateHours(extract *model.AuditExtract) (float64, map[model.Tier]int) {
	moderate := e.rates.TierHours[string(model.TierModerate)]

	if len(extract.Fixes) == 0 {
		n := len(extract.DistinctCategories())
		if n == 0 {
			n = 2
		}
		return float64(n) * moderate, nil
	}

	total := 0.0
	counts := make(map[model.Tier]int, 4)
	for _, fix := range extract.Fixes {
		tier := ClassifyEffort(fix.Complexity, e.rates.TierKeywords)
		hours, ok := e.rates.TierHours[string(tier)]
		if !ok {
			hours = moderate
		}
		total += hours
		counts[tier]++
	}
	return total, counts
}

// weightedRate blends the skill-composition table into one hourly rate.
func (e *Engine) weightedRate() float64 {
	var rate float64
	for _, s := range e.rates.Skills {
		rate += s.Rate * s.Weight
	}
	return rate
}
