package phases

import (
	"math"
	"strings"

	"github.com/sells-group/proposal-cli/internal/model"
)

// totalWeeks estimates the engagement length: price-proportional with a
// floor, scaled by the pressure multiplier for the timeline key.
func (b *Builder) totalWeeks(finalPrice int64, timeline string) float64 {
	d := b.rates.Duration

	weeks := math.Ceil(float64(finalPrice) / d.PricePerWeek)
	if weeks < float64(d.MinWeeks) {
		weeks = float64(d.MinWeeks)
	}

	key := strings.ToLower(strings.TrimSpace(timeline))
	if key == "" {
		key = "standard"
	}
	mult, ok := d.Pressure[key]
	if !ok {
		mult = 1.0
	}
	return weeks * mult
}

// distributeWeeks splits the nominal total across the allocations in
// proportion to their dollar share. Every leg is floored at one week and
// rounded up independently, so the sum may exceed the nominal total; the
// estimates are advisory, not reconciled.
func distributeWeeks(total float64, allocs []model.MilestoneAllocation) []int {
	var dollars float64
	for _, a := range allocs {
		dollars += float64(a.Amount)
	}

	out := make([]int, len(allocs))
	for i, a := range allocs {
		share := 1.0 / float64(len(allocs))
		if dollars > 0 {
			share = float64(a.Amount) / dollars
		}
		w := int(math.Ceil(total * share))
		if w < 1 {
			w = 1
		}
		out[i] = w
	}
	return out
}
