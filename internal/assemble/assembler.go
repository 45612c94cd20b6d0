// Package assemble merges the audit extract, pricing breakdown, and phase
// fragment into one proposal document, populating every structural field
// deterministically and inserting placeholder slots where narrative
// content is required.
package assemble

import (
	"time"

	"github.com/sells-group/proposal-cli/internal/config"
	"github.com/sells-group/proposal-cli/internal/ident"
	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/internal/pricing"
)

// Slot names. The prompt catalog resolves these to prompts; the same name
// may appear at many paths (one per phase, milestone, or scope item).
const (
	SlotExecutiveSummary     = "executive_summary"
	SlotValueProposition     = "value_proposition"
	SlotPhaseDescription     = "phase_description"
	SlotMilestoneDescription = "milestone_description"
	SlotScopeItem            = "scope_item"
	SlotCTAHeadline          = "cta_headline"
	SlotCTASubtext           = "cta_subtext"
)

// Options are the run-time knobs for assembly.
type Options struct {
	Platform    string // terms variant: hosted (default) or byoc
	TopFindings int    // key-findings cap, 0 means default
}

// Assembler builds proposal documents. The clock and id source are
// injected so output is reproducible in tests.
type Assembler struct {
	cfg config.ProposalConfig
	ids ident.Source
	now func() time.Time
}

// New creates an Assembler using the wall clock.
func New(cfg config.ProposalConfig, ids ident.Source) *Assembler {
	return &Assembler{cfg: cfg, ids: ids, now: time.Now}
}

// WithNow overrides the clock. Returns the assembler for chaining.
func (a *Assembler) WithNow(now func() time.Time) *Assembler {
	a.now = now
	return a
}

// Assemble produces the document. Everything except the narrative slots
// is final on return; calling it twice with the same inputs and a fixed
// clock/id source yields identical documents.
func (a *Assembler) Assemble(extract *model.AuditExtract, breakdown *model.PricingBreakdown, phaseList []model.Phase, opts Options) *model.ProposalDocument {
	now := a.now()

	doc := &model.ProposalDocument{
		Meta: model.Meta{
			SchemaVersion:  model.SchemaVersion,
			ProposalNumber: a.ids.ProposalNumber(now),
			Date:           now.UTC(),
			Producer:       a.cfg.Producer,
		},
		Client: extract.Client,
		Summary: model.Summary{
			Executive:   model.PendingText(SlotExecutiveSummary),
			ValueProp:   model.PendingText(SlotValueProposition),
			KeyFindings: topFindings(extract.Findings, opts.TopFindings),
		},
		Pricing: model.PricingSection{
			Breakdown: *breakdown,
			Display:   displayPricing(breakdown),
		},
		ROI:    buildROI(extract, breakdown.FinalPrice),
		Phases: slotPhases(phaseList),
		Scope:  buildScope(extract),
		Terms:  buildTerms(opts.Platform),
		CallToAction: model.CallToAction{
			Headline: model.PendingText(SlotCTAHeadline),
			Subtext:  model.PendingText(SlotCTASubtext),
			Contact:  a.cfg.Contact,
		},
		Render: model.RenderHints{
			Theme:       a.cfg.Theme,
			AccentColor: a.cfg.AccentColor,
		},
	}
	return doc
}

// slotPhases inserts description slots: every phase gets one, and so does
// every milestone that arrived without fixed text (the priced ones).
func slotPhases(phaseList []model.Phase) []model.Phase {
	out := make([]model.Phase, len(phaseList))
	copy(out, phaseList)
	for i := range out {
		out[i].Description = model.PendingText(SlotPhaseDescription)

		milestones := make([]model.Milestone, len(out[i].Milestones))
		copy(milestones, out[i].Milestones)
		for j := range milestones {
			if _, pending := milestones[j].Description.Pending(); pending {
				continue
			}
			if milestones[j].Description.String() == "" {
				milestones[j].Description = model.PendingText(SlotMilestoneDescription)
			}
		}
		out[i].Milestones = milestones
	}
	return out
}

// displayPricing pre-formats the dollar figures renderers show verbatim.
func displayPricing(b *model.PricingBreakdown) model.PricingDisplay {
	d := model.PricingDisplay{
		Subtotal:    pricing.USD(b.Subtotal),
		AuditCredit: "-" + pricing.USD(b.AuditCredit),
		FinalPrice:  pricing.USD(b.FinalPrice),
	}
	if b.EarlyAdopter.Applied {
		if b.EarlyAdopter.Amount >= 0 {
			d.EarlyAdopter = "-" + pricing.USD(b.EarlyAdopter.Amount)
		} else {
			// Floor clamp raised the price past the nominal discount.
			d.EarlyAdopter = "+" + pricing.USD(-b.EarlyAdopter.Amount)
		}
	}
	return d
}
