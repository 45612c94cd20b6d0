package phases

import "github.com/sells-group/proposal-cli/internal/model"

// aiKeywords trigger the AI-assisted processing deliverable when they
// appear in fix text. "automat" is a stem: automate, automated,
// automation. "ai" alone is matched on word boundaries, not here.
var aiKeywords = []string{
	"automat", "machine learning", "intelligent", "classif", "llm", "gpt",
}

// phase 1 is the diagnostic already delivered; its milestone text is
// fixed, not generated.
const auditMilestoneText = "Full diagnostic of the systems and processes in scope, delivered as the audit report this proposal is based on."

// phase 3 teaser milestones.
var teaserMilestones = []struct {
	name string
	text string
}{
	{
		name: "Expansion Roadmap",
		text: "Prioritized backlog of the next automation candidates surfaced during the build, with effort and value estimates.",
	},
	{
		name: "Continuous Optimization",
		text: "Quarterly tuning of deployed workflows against the metrics baselined at handoff.",
	},
}

// deliverableSpec is one fixed catalog entry.
type deliverableSpec struct {
	name       string
	acceptance []string
}

func (d deliverableSpec) toModel() model.Deliverable {
	return model.Deliverable{Name: d.name, Acceptance: d.acceptance}
}

var designDeliverables = []deliverableSpec{
	{
		name:       "Solution architecture blueprint",
		acceptance: []string{"Covers every in-scope system", "Approved by the client sponsor"},
	},
	{
		name:       "Integration map and data contracts",
		acceptance: []string{"Field-level mapping for each connected system"},
	},
}

var buildDeliverables = []deliverableSpec{
	{
		name:       "Core workflow implementation",
		acceptance: []string{"All scoped workflows run end to end in staging"},
	},
}

// buildIntegrationsDeliverable is added only when more than one system is
// involved.
var buildIntegrationsDeliverable = deliverableSpec{
	name:       "Cross-system integrations",
	acceptance: []string{"Records sync between connected systems without manual steps"},
}

// buildAIDeliverable is added only when fix text matches aiKeywords.
var buildAIDeliverable = deliverableSpec{
	name:       "AI-assisted processing",
	acceptance: []string{"Model-backed steps meet the agreed accuracy threshold on sample data"},
}

var testDeliverables = []deliverableSpec{
	{
		name:       "End-to-end test suite and UAT",
		acceptance: []string{"Client signs off on the UAT checklist"},
	},
	{
		name:       "Failure-path validation",
		acceptance: []string{"Error and retry behavior verified for each integration"},
	},
}

var deployDeliverables = []deliverableSpec{
	{
		name:       "Production cutover",
		acceptance: []string{"Workflows live with rollback plan documented"},
	},
	{
		name:       "Team training and runbook",
		acceptance: []string{"Operating team runs the playbook unassisted"},
	},
	{
		name:       "30-day hypercare",
		acceptance: []string{"Support window and escalation path agreed"},
	},
}

func toDeliverables(specs []deliverableSpec) []model.Deliverable {
	out := make([]model.Deliverable, 0, len(specs))
	for _, d := range specs {
		out = append(out, d.toModel())
	}
	return out
}
