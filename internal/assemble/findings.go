package assemble

import (
	"sort"

	"github.com/sells-group/proposal-cli/internal/model"
)

// defaultTopFindings caps the key-findings list.
const defaultTopFindings = 5

// topFindings returns the n most urgent findings. The sort is stable so
// findings of equal severity keep their audit order.
func topFindings(findings []model.Finding, n int) []model.Finding {
	if n <= 0 {
		n = defaultTopFindings
	}
	sorted := make([]model.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() < sorted[j].Severity.Rank()
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
