package model

import "time"

// SchemaVersion identifies the proposal document shape for downstream
// validation and rendering.
const SchemaVersion = "2.1"

// PhaseStatus is the lifecycle state of an engagement phase.
type PhaseStatus string

const (
	PhaseComplete PhaseStatus = "complete"
	PhaseCurrent  PhaseStatus = "current"
	PhaseUpcoming PhaseStatus = "upcoming"
)

// Deliverable is a unit of work inside a milestone, with the criteria the
// client signs off against.
type Deliverable struct {
	Name       string   `json:"name"`
	Acceptance []string `json:"acceptance,omitempty"`
}

// Duration is an advisory estimate, not a reconciled invariant.
type Duration struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

// Milestone is one ordered slice of a phase. Price is zero for milestones
// in unpriced phases.
type Milestone struct {
	ID           string        `json:"id"`
	Ordinal      string        `json:"ordinal"`
	Name         string        `json:"name"`
	Description  Text          `json:"description"`
	Deliverables []Deliverable `json:"deliverables,omitempty"`
	Duration     Duration      `json:"duration"`
	Price        int64         `json:"price_allocation"`
}

// Phase groups milestones under one lifecycle state.
type Phase struct {
	Ordinal     int         `json:"ordinal"`
	Name        string      `json:"name"`
	Status      PhaseStatus `json:"status"`
	Description Text        `json:"description"`
	Weeks       int         `json:"weeks,omitempty"`
	Milestones  []Milestone `json:"milestones"`
}

// Meta is document identity and provenance.
type Meta struct {
	SchemaVersion  string    `json:"schema_version"`
	ProposalNumber string    `json:"proposal_number"`
	Date           time.Time `json:"date"`
	Producer       string    `json:"producer"`
}

// Summary is the opening narrative block.
type Summary struct {
	Executive   Text      `json:"executive"`
	ValueProp   Text      `json:"value_proposition"`
	KeyFindings []Finding `json:"key_findings,omitempty"`
}

// PricingSection presents the breakdown to the reader.
type PricingSection struct {
	Breakdown PricingBreakdown `json:"breakdown"`
	Display   PricingDisplay   `json:"display"`
}

// PricingDisplay carries pre-formatted dollar strings so renderers never
// re-derive money math.
type PricingDisplay struct {
	Subtotal     string `json:"subtotal"`
	AuditCredit  string `json:"audit_credit"`
	EarlyAdopter string `json:"early_adopter,omitempty"`
	FinalPrice   string `json:"final_price"`
}

// ROISection is the value-recovery story derived from the audit's bleed
// figure and the final price.
type ROISection struct {
	MonthlyBleed   float64 `json:"monthly_bleed"`
	AnnualBleed    float64 `json:"annual_bleed"`
	PaybackMonths  float64 `json:"payback_months"`
	ThreeYearValue float64 `json:"three_year_value"`
}

// ScopeItem is one in-scope line. Basis is the raw fix description the
// item is grounded on; Detail is the polished narrative. If generation
// fails, Basis still carries usable text next to the sentinel.
type ScopeItem struct {
	Basis  string `json:"basis,omitempty"`
	Detail Text   `json:"detail"`
}

// Scope bounds the engagement.
type Scope struct {
	Included    []ScopeItem `json:"included"`
	Excluded    []string    `json:"excluded,omitempty"`
	Assumptions []string    `json:"assumptions,omitempty"`
}

// Terms is the platform-dependent commercial boilerplate.
type Terms struct {
	Platform     string   `json:"platform"`
	PaymentTerms string   `json:"payment_terms"`
	Fees         []string `json:"fees,omitempty"`
	Notes        []string `json:"notes,omitempty"`
}

// CallToAction closes the document.
type CallToAction struct {
	Headline Text   `json:"headline"`
	Subtext  Text   `json:"subtext"`
	Contact  string `json:"contact,omitempty"`
}

// RenderHints are pass-through instructions for the downstream renderer.
type RenderHints struct {
	Theme        string `json:"theme,omitempty"`
	AccentColor  string `json:"accent_color,omitempty"`
	ShowAppendix bool   `json:"show_appendix,omitempty"`
}

// ProposalDocument is the assembled proposal prior to rendering. Narrative
// leaves are Text values; everything else is populated deterministically
// by the assembler and never touched again.
type ProposalDocument struct {
	Meta         Meta           `json:"meta"`
	Client       Client         `json:"client"`
	Summary      Summary        `json:"summary"`
	Pricing      PricingSection `json:"pricing"`
	ROI          ROISection     `json:"roi"`
	Phases       []Phase        `json:"phases"`
	Scope        Scope          `json:"scope"`
	Terms        Terms          `json:"terms"`
	CallToAction CallToAction   `json:"call_to_action"`
	Render       RenderHints    `json:"render,omitempty"`
}
