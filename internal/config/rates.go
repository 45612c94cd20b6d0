package config

import (
	"fmt"
	"math"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ConfigError reports a malformed or missing rate-table entry. Field is
// the dotted path of the offending entry. Rate-table errors are fatal and
// surface before any pricing runs.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rates: %s: %s", e.Field, e.Msg)
}

// SkillRate is one line of the skill-composition table. Weights across
// the table sum to 1.0.
type SkillRate struct {
	Skill  string  `yaml:"skill"`
	Rate   float64 `yaml:"rate"`
	Weight float64 `yaml:"weight"`
}

// SystemsBucket maps a systems-count range to a multiplier. Max 0 means
// unbounded.
type SystemsBucket struct {
	Min        int     `yaml:"min"`
	Max        int     `yaml:"max"`
	Multiplier float64 `yaml:"multiplier"`
}

// IntegrationRule detects one integration type by keyword and carries its
// difficulty multiplier. The engine takes the max over detected types.
type IntegrationRule struct {
	Type       string   `yaml:"type"`
	Keywords   []string `yaml:"keywords"`
	Multiplier float64  `yaml:"multiplier"`
}

// MultiplierTables holds the six complexity-factor lookup tables.
type MultiplierTables struct {
	SystemsBuckets      []SystemsBucket    `yaml:"systems_buckets"`
	Integrations        []IntegrationRule  `yaml:"integrations"`
	Sensitivity         map[string]float64 `yaml:"sensitivity"`
	IndustrySensitivity map[string]string  `yaml:"industry_sensitivity"`
	Timeline            map[string]float64 `yaml:"timeline"`
	Readiness           map[string]float64 `yaml:"readiness"`
	Industry            map[string]float64 `yaml:"industry"`
	IndustryAliases     map[string]string  `yaml:"industry_aliases"`
}

// VolumeTier maps an adjusted-price range to a discount percentage.
// MaxPrice 0 means unbounded.
type VolumeTier struct {
	Name     string  `yaml:"name"`
	MinPrice float64 `yaml:"min_price"`
	MaxPrice float64 `yaml:"max_price"`
	Pct      float64 `yaml:"pct"`
}

// DiscountRules holds every discount lookup plus the stacking policy.
type DiscountRules struct {
	Stacking     string             `yaml:"stacking"`
	CapPct       float64            `yaml:"cap_pct"`
	VolumeTiers  []VolumeTier       `yaml:"volume_tiers"`
	Commitment   map[string]float64 `yaml:"commitment"`
	EarlyPayment map[string]float64 `yaml:"early_payment"`
	ReferralPct  float64            `yaml:"referral_pct"`
}

// Stacking policies.
const (
	StackingHighestOnly = "highest_only"
	StackingAdditive    = "additive"
)

// MilestoneSplit is the percentage allocation of the subtotal. The four
// percentages sum to 100; deploy is nominal only since it absorbs
// rounding drift.
type MilestoneSplit struct {
	DesignPct float64 `yaml:"design_pct"`
	BuildPct  float64 `yaml:"build_pct"`
	TestPct   float64 `yaml:"test_pct"`
	DeployPct float64 `yaml:"deploy_pct"`
}

// RoundingRules holds the dollar increment and the project-value floor.
type RoundingRules struct {
	Increment           int64 `yaml:"increment"`
	MinimumProjectValue int64 `yaml:"minimum_project_value"`
}

// EarlyAdopterRule configures the early-adopter discount.
type EarlyAdopterRule struct {
	Enabled bool    `yaml:"enabled"`
	Pct     float64 `yaml:"pct"`
}

// ValidationRules configures the advisory enterprise checks.
type ValidationRules struct {
	HardFloorPct     float64 `yaml:"hard_floor_pct"`
	MaxPaybackMonths float64 `yaml:"max_payback_months"`
}

// DurationRules configures phase duration estimation.
type DurationRules struct {
	PricePerWeek float64            `yaml:"price_per_week"`
	MinWeeks     int                `yaml:"min_weeks"`
	Pressure     map[string]float64 `yaml:"pressure"`
}

// RateConfig is the complete read-only pricing table set. Loaded once per
// run; never written by the pipeline.
type RateConfig struct {
	Skills       []SkillRate         `yaml:"skills"`
	TierHours    map[string]float64  `yaml:"tier_hours"`
	TierKeywords map[string][]string `yaml:"tier_keywords"`
	Multipliers  MultiplierTables    `yaml:"multipliers"`
	Discounts    DiscountRules       `yaml:"discounts"`
	Milestones   MilestoneSplit      `yaml:"milestones"`
	Rounding     RoundingRules       `yaml:"rounding"`
	AuditCredit  int64               `yaml:"audit_credit"`
	EarlyAdopter EarlyAdopterRule    `yaml:"early_adopter"`
	Validation   ValidationRules     `yaml:"validation"`
	Duration     DurationRules       `yaml:"duration"`
}

// DefaultRates returns the built-in rate tables. A rates file overrides
// them key by key.
func DefaultRates() *RateConfig {
	return &RateConfig{
		Skills: []SkillRate{
			{Skill: "solutions_architect", Rate: 250, Weight: 0.20},
			{Skill: "senior_engineer", Rate: 195, Weight: 0.45},
			{Skill: "automation_engineer", Rate: 165, Weight: 0.25},
			{Skill: "project_manager", Rate: 145, Weight: 0.10},
		},
		TierHours: map[string]float64{
			"trivial":  4,
			"moderate": 12,
			"complex":  28,
			"critical": 48,
		},
		TierKeywords: map[string][]string{
			"trivial":  {"trivial", "quick", "simple", "minor", "small"},
			"moderate": {"moderate", "standard", "typical", "medium"},
			"complex":  {"complex", "significant", "major", "involved", "integration"},
			"critical": {"critical", "extensive", "overhaul", "rebuild", "migration"},
		},
		Multipliers: MultiplierTables{
			SystemsBuckets: []SystemsBucket{
				{Min: 1, Max: 2, Multiplier: 1.0},
				{Min: 3, Max: 4, Multiplier: 1.1},
				{Min: 5, Max: 6, Multiplier: 1.25},
				{Min: 7, Max: 0, Multiplier: 1.4},
			},
			Integrations: []IntegrationRule{
				{Type: "crm", Keywords: []string{"salesforce", "hubspot", "pipedrive", "crm"}, Multiplier: 1.15},
				{Type: "payments", Keywords: []string{"stripe", "quickbooks", "billing", "invoice", "payment"}, Multiplier: 1.2},
				{Type: "erp", Keywords: []string{"netsuite", "sap", "erp", "inventory"}, Multiplier: 1.3},
				{Type: "communication", Keywords: []string{"slack", "twilio", "email", "outlook", "gmail"}, Multiplier: 1.05},
				{Type: "marketing", Keywords: []string{"mailchimp", "marketo", "klaviyo", "ads"}, Multiplier: 1.1},
			},
			Sensitivity: map[string]float64{
				"standard":  1.0,
				"elevated":  1.15,
				"regulated": 1.3,
			},
			IndustrySensitivity: map[string]string{
				"healthcare": "regulated",
				"finance":    "regulated",
				"government": "regulated",
				"legal":      "elevated",
				"insurance":  "elevated",
			},
			Timeline: map[string]float64{
				"standard":  1.0,
				"expedited": 1.15,
				"urgent":    1.3,
				"emergency": 1.5,
			},
			Readiness: map[string]float64{
				"prepared":        0.95,
				"standard":        1.0,
				"needs_discovery": 1.15,
				"legacy_heavy":    1.3,
			},
			Industry: map[string]float64{
				"technology":            1.0,
				"professional_services": 1.0,
				"ecommerce":             1.05,
				"real_estate":           1.05,
				"hospitality":           1.05,
				"construction":          1.1,
				"manufacturing":         1.15,
				"legal":                 1.15,
				"healthcare":            1.25,
				"finance":               1.25,
			},
			IndustryAliases: map[string]string{
				"saas":       "technology",
				"software":   "technology",
				"tech":       "technology",
				"it":         "technology",
				"fintech":    "finance",
				"banking":    "finance",
				"accounting": "finance",
				"medical":    "healthcare",
				"clinic":     "healthcare",
				"dental":     "healthcare",
				"law":        "legal",
				"attorney":   "legal",
				"ecom":       "ecommerce",
				"retail":     "ecommerce",
				"shop":       "ecommerce",
				"realty":     "real_estate",
				"property":   "real_estate",
				"restaurant": "hospitality",
				"hotel":      "hospitality",
				"consulting": "professional_services",
				"agency":     "professional_services",
			},
		},
		Discounts: DiscountRules{
			Stacking: StackingHighestOnly,
			CapPct:   15,
			VolumeTiers: []VolumeTier{
				{Name: "starter", MinPrice: 0, MaxPrice: 9999.99, Pct: 0},
				{Name: "growth", MinPrice: 10000, MaxPrice: 24999.99, Pct: 3},
				{Name: "scale", MinPrice: 25000, MaxPrice: 49999.99, Pct: 5},
				{Name: "enterprise", MinPrice: 50000, MaxPrice: 0, Pct: 8},
			},
			Commitment: map[string]float64{
				"none":       0,
				"six_month":  3,
				"annual":     5,
				"multi_year": 8,
			},
			EarlyPayment: map[string]float64{
				"net30":   0,
				"net15":   1,
				"upfront": 3,
			},
			ReferralPct: 5,
		},
		Milestones: MilestoneSplit{
			DesignPct: 20,
			BuildPct:  45,
			TestPct:   15,
			DeployPct: 20,
		},
		Rounding: RoundingRules{
			Increment:           100,
			MinimumProjectValue: 2500,
		},
		AuditCredit: 100,
		EarlyAdopter: EarlyAdopterRule{
			Enabled: true,
			Pct:     10,
		},
		Validation: ValidationRules{
			HardFloorPct:     30,
			MaxPaybackMonths: 12,
		},
		Duration: DurationRules{
			PricePerWeek: 5000,
			MinWeeks:     2,
			Pressure: map[string]float64{
				"standard":  1.0,
				"expedited": 0.75,
				"urgent":    0.5,
				"emergency": 0.3,
			},
		},
	}
}

// LoadRates reads the rate tables from a YAML file layered over the
// defaults, then validates the result. An empty path returns the defaults
// unchanged.
func LoadRates(path string) (*RateConfig, error) {
	rc := DefaultRates()
	if path == "" {
		if err := rc.Validate(); err != nil {
			return nil, err
		}
		return rc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rates: read %s", path)
	}

	wrapper := struct {
		Rates *RateConfig `yaml:"rates"`
	}{Rates: rc}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrapf(err, "rates: parse %s", path)
	}

	if err := rc.Validate(); err != nil {
		return nil, err
	}
	return rc, nil
}

// Validate checks every table the pricing engine depends on. The first
// violation is returned as a ConfigError naming the offending field.
func (rc *RateConfig) Validate() error {
	if len(rc.Skills) == 0 {
		return &ConfigError{Field: "skills", Msg: "table is empty"}
	}
	var weightSum float64
	for i, s := range rc.Skills {
		if s.Rate <= 0 {
			return &ConfigError{Field: fmt.Sprintf("skills[%d].rate", i), Msg: "must be positive"}
		}
		if s.Weight < 0 {
			return &ConfigError{Field: fmt.Sprintf("skills[%d].weight", i), Msg: "must not be negative"}
		}
		weightSum += s.Weight
	}
	if math.Abs(weightSum-1.0) > 1e-9 {
		return &ConfigError{Field: "skills.weight", Msg: fmt.Sprintf("weights sum to %.4f, want 1.0", weightSum)}
	}

	for _, tier := range []string{"trivial", "moderate", "complex", "critical"} {
		h, ok := rc.TierHours[tier]
		if !ok || h <= 0 {
			return &ConfigError{Field: "tier_hours." + tier, Msg: "missing or non-positive"}
		}
	}

	if len(rc.Multipliers.SystemsBuckets) == 0 {
		return &ConfigError{Field: "multipliers.systems_buckets", Msg: "table is empty"}
	}
	for name, table := range map[string]map[string]float64{
		"multipliers.sensitivity": rc.Multipliers.Sensitivity,
		"multipliers.timeline":    rc.Multipliers.Timeline,
		"multipliers.readiness":   rc.Multipliers.Readiness,
		"multipliers.industry":    rc.Multipliers.Industry,
	} {
		if len(table) == 0 {
			return &ConfigError{Field: name, Msg: "table is empty"}
		}
		for key, mul := range table {
			if mul <= 0 {
				return &ConfigError{Field: name + "." + key, Msg: "must be positive"}
			}
		}
	}

	switch rc.Discounts.Stacking {
	case StackingHighestOnly, StackingAdditive:
	default:
		return &ConfigError{Field: "discounts.stacking", Msg: fmt.Sprintf("unknown policy %q", rc.Discounts.Stacking)}
	}
	if rc.Discounts.CapPct < 0 || rc.Discounts.CapPct > 100 {
		return &ConfigError{Field: "discounts.cap_pct", Msg: "must be within [0,100]"}
	}

	split := rc.Milestones
	total := split.DesignPct + split.BuildPct + split.TestPct + split.DeployPct
	if math.Abs(total-100) > 1e-9 {
		return &ConfigError{Field: "milestones", Msg: fmt.Sprintf("split sums to %.2f, want 100", total)}
	}

	if rc.Rounding.Increment <= 0 {
		return &ConfigError{Field: "rounding.increment", Msg: "must be positive"}
	}
	if rc.Rounding.MinimumProjectValue < 0 {
		return &ConfigError{Field: "rounding.minimum_project_value", Msg: "must not be negative"}
	}
	if rc.EarlyAdopter.Pct < 0 || rc.EarlyAdopter.Pct >= 100 {
		return &ConfigError{Field: "early_adopter.pct", Msg: "must be within [0,100)"}
	}

	if rc.Duration.PricePerWeek <= 0 {
		return &ConfigError{Field: "duration.price_per_week", Msg: "must be positive"}
	}
	if rc.Duration.MinWeeks < 1 {
		return &ConfigError{Field: "duration.min_weeks", Msg: "must be at least 1"}
	}
	for key, mul := range rc.Duration.Pressure {
		if mul <= 0 {
			return &ConfigError{Field: "duration.pressure." + key, Msg: "must be positive"}
		}
	}

	return nil
}
