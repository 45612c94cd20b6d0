// Package phases turns a pricing breakdown into the three-phase
// engagement structure: the completed audit, the priced build, and the
// upcoming optimization teaser.
package phases

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sells-group/proposal-cli/internal/config"
	"github.com/sells-group/proposal-cli/internal/ident"
	"github.com/sells-group/proposal-cli/internal/model"
)

// Builder derives phases from audit extracts and breakdowns. Safe for
// concurrent use.
type Builder struct {
	rates *config.RateConfig
	ids   ident.Source
}

// NewBuilder creates a Builder.
func NewBuilder(rates *config.RateConfig, ids ident.Source) *Builder {
	return &Builder{rates: rates, ids: ids}
}

// Build returns the three engagement phases. The timeline key compresses
// durations; it must match the pressure option given to pricing or the
// estimates will not line up with the quoted urgency.
func (b *Builder) Build(extract *model.AuditExtract, breakdown *model.PricingBreakdown, timeline string) []model.Phase {
	return []model.Phase{
		b.auditPhase(),
		b.currentPhase(extract, breakdown, timeline),
		b.teaserPhase(),
	}
}

// auditPhase is the static completed phase referencing the audit itself.
func (b *Builder) auditPhase() model.Phase {
	return model.Phase{
		Ordinal: 1,
		Name:    "Automation Audit",
		Status:  model.PhaseComplete,
		Milestones: []model.Milestone{
			{
				ID:          b.ids.NewID(),
				Ordinal:     "1.1",
				Name:        "Systems & Process Audit",
				Description: model.ResolvedText(auditMilestoneText),
			},
		},
	}
}

// currentPhase derives the four priced milestones from the allocation.
func (b *Builder) currentPhase(extract *model.AuditExtract, breakdown *model.PricingBreakdown, timeline string) model.Phase {
	allocs := breakdown.Milestones.Ordered()
	weeks := distributeWeeks(b.totalWeeks(breakdown.FinalPrice, timeline), allocs)

	milestones := make([]model.Milestone, 0, len(allocs))
	phaseWeeks := 0
	for i, alloc := range allocs {
		milestones = append(milestones, model.Milestone{
			ID:           b.ids.NewID(),
			Ordinal:      fmt.Sprintf("2.%d", i+1),
			Name:         alloc.Label,
			Deliverables: b.deliverablesFor(alloc.Key, extract),
			Duration:     model.Duration{Value: weeks[i], Unit: "weeks"},
			Price:        alloc.Amount,
		})
		phaseWeeks += weeks[i]
	}

	return model.Phase{
		Ordinal:    2,
		Name:       "Implementation",
		Status:     model.PhaseCurrent,
		Weeks:      phaseWeeks,
		Milestones: milestones,
	}
}

// teaserPhase is the static upcoming phase with two unpriced milestones.
func (b *Builder) teaserPhase() model.Phase {
	milestones := make([]model.Milestone, 0, len(teaserMilestones))
	for i, tm := range teaserMilestones {
		milestones = append(milestones, model.Milestone{
			ID:          b.ids.NewID(),
			Ordinal:     fmt.Sprintf("3.%d", i+1),
			Name:        tm.name,
			Description: model.ResolvedText(tm.text),
		})
	}
	return model.Phase{
		Ordinal:    3,
		Name:       "Scale & Optimize",
		Status:     model.PhaseUpcoming,
		Milestones: milestones,
	}
}

// deliverablesFor returns the fixed catalog for a milestone key. The
// build milestone is conditionally extended: integrations only when more
// than one system is involved, AI processing only when fix text matches.
func (b *Builder) deliverablesFor(key string, extract *model.AuditExtract) []model.Deliverable {
	switch key {
	case "design":
		return toDeliverables(designDeliverables)
	case "build":
		out := toDeliverables(buildDeliverables)
		if len(extract.Systems) > 1 {
			out = append(out, buildIntegrationsDeliverable.toModel())
		}
		if hasAISignal(extract) {
			out = append(out, buildAIDeliverable.toModel())
		}
		return out
	case "test":
		return toDeliverables(testDeliverables)
	case "deploy":
		return toDeliverables(deployDeliverables)
	default:
		return nil
	}
}

// hasAISignal reports whether any fix mentions AI or automation work.
// "ai" needs a word boundary so "email" does not trip it.
func hasAISignal(extract *model.AuditExtract) bool {
	text := extract.FixText()
	for _, kw := range aiKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if word == "ai" {
			return true
		}
	}
	return false
}
