package placeholder

import (
	"strconv"
	"strings"

	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/internal/pricing"
)

// Context returns the document facts every prompt template can reference:
// client identity, the money story, and a findings digest. Values are
// pre-formatted strings so templates never do math.
func Context(doc *model.ProposalDocument) map[string]string {
	ctx := map[string]string{
		"client_name":      doc.Client.Name,
		"client_industry":  doc.Client.Industry,
		"proposal_number":  doc.Meta.ProposalNumber,
		"subtotal":         doc.Pricing.Display.Subtotal,
		"final_price":      doc.Pricing.Display.FinalPrice,
		"monthly_bleed":    pricing.USDFloat(doc.ROI.MonthlyBleed),
		"annual_bleed":     pricing.USDFloat(doc.ROI.AnnualBleed),
		"payback_months":   strconv.FormatFloat(doc.ROI.PaybackMonths, 'f', -1, 64),
		"three_year_value": pricing.USDFloat(doc.ROI.ThreeYearValue),
		"phase_count":      strconv.Itoa(len(doc.Phases)),
	}

	var lines []string
	for _, f := range doc.Summary.KeyFindings {
		line := "[" + string(f.Severity) + "] " + f.Title
		if f.Impact != "" {
			line += ": " + f.Impact
		}
		lines = append(lines, line)
	}
	ctx["key_findings"] = strings.Join(lines, "\n")

	var scope []string
	for _, item := range doc.Scope.Included {
		if item.Basis != "" {
			scope = append(scope, item.Basis)
		}
	}
	ctx["scope_items"] = strings.Join(scope, "; ")
	return ctx
}

// SlotContext is Context plus the slot's local facts, located by parsing
// its path. A phase slot gains the phase's name and milestone roster; a
// milestone slot additionally gains its price, duration, and deliverables;
// a scope slot gains the fix text it is grounded on.
func SlotContext(doc *model.ProposalDocument, s Slot) map[string]string {
	ctx := Context(doc)
	ctx["slot"] = s.Name

	steps, err := parsePath(s.Path)
	if err != nil {
		return ctx
	}

	switch {
	case len(steps) >= 2 && steps[0].key == "phases" && steps[1].index >= 0:
		i := steps[1].index
		if i >= len(doc.Phases) {
			return ctx
		}
		addPhase(ctx, &doc.Phases[i])
		if len(steps) >= 4 && steps[2].key == "milestones" && steps[3].index >= 0 {
			j := steps[3].index
			if j < len(doc.Phases[i].Milestones) {
				addMilestone(ctx, &doc.Phases[i].Milestones[j])
			}
		}
	case len(steps) >= 3 && steps[0].key == "scope" && steps[1].key == "included" && steps[2].index >= 0:
		i := steps[2].index
		if i < len(doc.Scope.Included) {
			ctx["scope_basis"] = doc.Scope.Included[i].Basis
		}
	}
	return ctx
}

func addPhase(ctx map[string]string, p *model.Phase) {
	ctx["phase_name"] = p.Name
	ctx["phase_status"] = string(p.Status)
	ctx["phase_ordinal"] = strconv.Itoa(p.Ordinal)
	if p.Weeks > 0 {
		ctx["phase_weeks"] = strconv.Itoa(p.Weeks)
	}
	names := make([]string, 0, len(p.Milestones))
	for _, m := range p.Milestones {
		names = append(names, m.Name)
	}
	ctx["phase_milestones"] = strings.Join(names, ", ")
}

func addMilestone(ctx map[string]string, m *model.Milestone) {
	ctx["milestone_name"] = m.Name
	ctx["milestone_ordinal"] = m.Ordinal
	if m.Price > 0 {
		ctx["milestone_price"] = pricing.USD(m.Price)
	}
	if m.Duration.Value > 0 {
		ctx["milestone_duration"] = strconv.Itoa(m.Duration.Value) + " " + m.Duration.Unit
	}
	names := make([]string, 0, len(m.Deliverables))
	for _, d := range m.Deliverables {
		names = append(names, d.Name)
	}
	ctx["milestone_deliverables"] = strings.Join(names, "; ")
}
