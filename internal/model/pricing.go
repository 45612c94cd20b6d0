package model

// Tier buckets a fix's free-text effort descriptor.
type Tier string

const (
	TierTrivial  Tier = "trivial"
	TierModerate Tier = "moderate"
	TierComplex  Tier = "complex"
	TierCritical Tier = "critical"
)

// MultiplierFactors are the six independent inputs whose product is the
// complexity multiplier. Each is recorded so a breakdown can be audited.
type MultiplierFactors struct {
	Systems     float64 `json:"systems"`
	Integration float64 `json:"integration"`
	Sensitivity float64 `json:"data_sensitivity"`
	Timeline    float64 `json:"timeline_pressure"`
	Readiness   float64 `json:"client_readiness"`
	Industry    float64 `json:"industry"`
}

// Product multiplies the six factors.
func (f MultiplierFactors) Product() float64 {
	return f.Systems * f.Integration * f.Sensitivity * f.Timeline * f.Readiness * f.Industry
}

// Discount is the combined discount applied to the adjusted price.
// Applied lists the rule names that contributed under the stacking policy.
type Discount struct {
	Pct     float64  `json:"pct"`
	Amount  float64  `json:"amount"`
	Applied []string `json:"applied,omitempty"`
}

// EarlyAdopter records the back-calculated early-adopter discount. Amount
// is (subtotal - audit_credit) - final_price, which can diverge from the
// nominal percentage once the minimum-project-value clamp applies.
type EarlyAdopter struct {
	Applied bool    `json:"applied"`
	Pct     float64 `json:"pct,omitempty"`
	Amount  int64   `json:"amount"`
}

// MilestoneAllocation is one leg of the subtotal split.
type MilestoneAllocation struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Pct    float64 `json:"pct"`
	Amount int64   `json:"amount"`
}

// Milestones holds the four-way allocation of the subtotal. Deploy absorbs
// all rounding drift so the legs always sum to the subtotal exactly.
type Milestones struct {
	Design MilestoneAllocation `json:"design"`
	Build  MilestoneAllocation `json:"build"`
	Test   MilestoneAllocation `json:"test"`
	Deploy MilestoneAllocation `json:"deploy"`
}

// Sum adds the four allocations.
func (m Milestones) Sum() int64 {
	return m.Design.Amount + m.Build.Amount + m.Test.Amount + m.Deploy.Amount
}

// Ordered returns the allocations in contract order.
func (m Milestones) Ordered() []MilestoneAllocation {
	return []MilestoneAllocation{m.Design, m.Build, m.Test, m.Deploy}
}

// ValidationNote is one advisory diagnostic from enterprise validation.
// Notes never alter the price.
type ValidationNote struct {
	Check   string `json:"check"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// PricingBreakdown is the immutable output of a pricing run. Dollar fields
// are whole dollars after rounding; intermediate figures stay fractional
// for auditability.
type PricingBreakdown struct {
	Hours         float64           `json:"hours"`
	WeightedRate  float64           `json:"weighted_rate"`
	BasePrice     float64           `json:"base_price"`
	Multiplier    float64           `json:"complexity_multiplier"`
	Factors       MultiplierFactors `json:"factors"`
	AdjustedPrice float64           `json:"adjusted_price"`
	Discount      Discount          `json:"discount"`
	Subtotal      int64             `json:"subtotal"`
	AuditCredit   int64             `json:"audit_credit"`
	EarlyAdopter  EarlyAdopter      `json:"early_adopter"`
	FinalPrice    int64             `json:"final_price"`
	Milestones    Milestones        `json:"milestones"`
	Validation    []ValidationNote  `json:"validation,omitempty"`
}
