package assemble

import (
	"strings"

	"github.com/sells-group/proposal-cli/internal/model"
)

// maxScopeItems bounds the in-scope list.
const maxScopeItems = 5

// fallbackScopeItems stand in when the audit carries no usable fix
// descriptions.
var fallbackScopeItems = []string{
	"Implementation of the workflow automations identified in the audit",
	"Integration of the systems named in the audit findings",
	"Documentation and handoff of every deployed workflow",
	"Post-launch monitoring through the hypercare window",
}

var scopeExcluded = []string{
	"Changes to systems not named in the audit",
	"Ongoing managed services beyond the hypercare window",
	"Licensing costs for third-party platforms",
	"Historical data cleanup predating the audit window",
}

var scopeAssumptions = []string{
	"Client provides admin access to in-scope systems within the first week",
	"A single stakeholder is empowered to approve milestone sign-offs",
	"Existing system configurations are representative of production use",
}

// buildScope derives the scope section: one slotted item per usable fix
// description (capped), falling back to the generic catalog when the
// audit has none.
func buildScope(extract *model.AuditExtract) model.Scope {
	var bases []string
	for _, fix := range extract.Fixes {
		desc := strings.TrimSpace(fix.Description)
		if desc == "" {
			continue
		}
		bases = append(bases, desc)
		if len(bases) == maxScopeItems {
			break
		}
	}
	if len(bases) == 0 {
		bases = fallbackScopeItems
	}

	included := make([]model.ScopeItem, 0, len(bases))
	for _, basis := range bases {
		included = append(included, model.ScopeItem{
			Basis:  basis,
			Detail: model.PendingText(SlotScopeItem),
		})
	}

	return model.Scope{
		Included:    included,
		Excluded:    scopeExcluded,
		Assumptions: scopeAssumptions,
	}
}
