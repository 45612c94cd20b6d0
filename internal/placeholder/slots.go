// Package placeholder finds the unresolved narrative leaves of a proposal
// document and addresses them by path. Paths use the document's JSON field
// names ("phases[1].milestones[2].description") so the same string works
// against both the typed document and its generic JSON form.
package placeholder

import (
	"fmt"

	"github.com/sells-group/proposal-cli/internal/model"
)

// Slot is one pending narrative leaf. Text points into the document, so
// resolving through it mutates the document in place.
type Slot struct {
	Path string
	Name string
	Text *model.Text
}

// Slots enumerates pending leaves in document order. The order is stable
// for a given document, which keeps batch grouping and run reports
// deterministic.
func Slots(doc *model.ProposalDocument) []Slot {
	var out []Slot
	add := func(path string, t *model.Text) {
		if name, pending := t.Pending(); pending {
			out = append(out, Slot{Path: path, Name: name, Text: t})
		}
	}

	add("summary.executive", &doc.Summary.Executive)
	add("summary.value_proposition", &doc.Summary.ValueProp)
	for i := range doc.Phases {
		p := &doc.Phases[i]
		add(fmt.Sprintf("phases[%d].description", i), &p.Description)
		for j := range p.Milestones {
			add(fmt.Sprintf("phases[%d].milestones[%d].description", i, j), &p.Milestones[j].Description)
		}
	}
	for i := range doc.Scope.Included {
		add(fmt.Sprintf("scope.included[%d].detail", i), &doc.Scope.Included[i].Detail)
	}
	add("call_to_action.headline", &doc.CallToAction.Headline)
	add("call_to_action.subtext", &doc.CallToAction.Subtext)
	return out
}
