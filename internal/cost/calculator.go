// Package cost attributes narrative generation spend to the configured
// per-model token rates.
package cost

import (
	"github.com/sells-group/proposal-cli/internal/config"
	"github.com/sells-group/proposal-cli/internal/model"
)

// Calculator prices token usage against per-provider model rates.
type Calculator struct {
	rates config.PricingConfig
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates config.PricingConfig) *Calculator {
	return &Calculator{rates: rates}
}

// Generation computes the cost of one model's token usage in USD.
// Unknown providers and models cost zero: a missing rate row must never
// sink a run, it just under-reports spend.
func (c *Calculator) Generation(provider, mdl string, usage model.Usage) float64 {
	var table map[string]config.ModelPricing
	switch provider {
	case "anthropic":
		table = c.rates.Anthropic
	case "gemini":
		table = c.rates.Gemini
	}

	rate, ok := table[mdl]
	if !ok {
		return 0
	}
	return (float64(usage.InputTokens)/1e6)*rate.Input +
		(float64(usage.OutputTokens)/1e6)*rate.Output
}

// FillTotal sums generation cost across a fill run's per-model usage.
func (c *Calculator) FillTotal(provider string, byModel map[string]model.Usage) float64 {
	var total float64
	for mdl, usage := range byModel {
		total += c.Generation(provider, mdl, usage)
	}
	return total
}
