package pricing

import (
	"strings"

	"github.com/sells-group/proposal-cli/internal/model"
)

// defaultSystemsCount stands in when the audit lists no systems.
const defaultSystemsCount = 2

// NormalizeIndustry folds a free-text industry string onto a canonical
// rate-table key: lowercase, spaces and hyphens to underscores, then the
// alias table ("saas" becomes "technology").
func NormalizeIndustry(raw string, aliases map[string]string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return key
}

// factors derives the six independent complexity inputs. Every lookup
// degrades to a neutral 1.0 rather than failing: malformed options never
// abort a calculation.
func (e *Engine) factors(extract *model.AuditExtract, opts Options) model.MultiplierFactors {
	tables := e.rates.Multipliers
	industry := NormalizeIndustry(extract.Client.Industry, tables.IndustryAliases)

	return model.MultiplierFactors{
		Systems:     e.systemsFactor(len(extract.Systems)),
		Integration: e.integrationFactor(extract.Systems),
		Sensitivity: e.sensitivityFactor(industry, opts.Sensitivity),
		Timeline:    lookupOrNeutral(tables.Timeline, opts.Timeline, "standard"),
		Readiness:   lookupOrNeutral(tables.Readiness, opts.Readiness, "standard"),
		Industry:    lookupOrOne(tables.Industry, industry),
	}
}

// systemsFactor buckets the systems count. Zero systems means the audit
// did not enumerate them, so the default count applies.
func (e *Engine) systemsFactor(count int) float64 {
	if count == 0 {
		count = defaultSystemsCount
	}
	for _, b := range e.rates.Multipliers.SystemsBuckets {
		if count >= b.Min && (b.Max == 0 || count <= b.Max) {
			return b.Multiplier
		}
	}
	return 1.0
}

// integrationFactor takes the max multiplier over all integration types
// detected in the systems list. Max, not product: one hard integration
// dominates several easy ones.
func (e *Engine) integrationFactor(systems []string) float64 {
	factor := 1.0
	for _, rule := range e.rates.Multipliers.Integrations {
		if rule.Multiplier <= factor {
			continue
		}
		for _, sys := range systems {
			if matchesAny(strings.ToLower(sys), rule.Keywords) {
				factor = rule.Multiplier
				break
			}
		}
	}
	return factor
}

// sensitivityFactor resolves the data-sensitivity level: an explicit
// override wins, otherwise the industry implies it, otherwise standard.
func (e *Engine) sensitivityFactor(industry, override string) float64 {
	tables := e.rates.Multipliers
	level := strings.ToLower(strings.TrimSpace(override))
	if level == "" {
		level = tables.IndustrySensitivity[industry]
	}
	if level == "" {
		level = "standard"
	}
	if mul, ok := tables.Sensitivity[level]; ok {
		return mul
	}
	return lookupOrNeutral(tables.Sensitivity, "standard", "standard")
}

func matchesAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// lookupOrNeutral resolves key (or fallback when key is empty) against a
// table, returning 1.0 when neither resolves.
func lookupOrNeutral(table map[string]float64, key, fallback string) float64 {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		k = fallback
	}
	if mul, ok := table[k]; ok {
		return mul
	}
	if mul, ok := table[fallback]; ok {
		return mul
	}
	return 1.0
}

// lookupOrOne is lookupOrNeutral without a named fallback key.
func lookupOrOne(table map[string]float64, key string) float64 {
	if mul, ok := table[key]; ok {
		return mul
	}
	return 1.0
}
