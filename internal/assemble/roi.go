package assemble

import (
	"math"

	"github.com/sells-group/proposal-cli/internal/model"
)

// buildROI derives the value-recovery figures. Payback rounds UP to one
// decimal so the document never understates the horizon: $15,000 against
// a $2,000 monthly bleed reads 7.5 months.
func buildROI(extract *model.AuditExtract, finalPrice int64) model.ROISection {
	bleed := extract.MonthlyBleed
	roi := model.ROISection{
		MonthlyBleed: bleed,
		AnnualBleed:  bleed * 12,
	}
	if bleed > 0 {
		roi.PaybackMonths = math.Ceil(float64(finalPrice)/bleed*10) / 10
		roi.ThreeYearValue = bleed*36 - float64(finalPrice)
	}
	return roi
}
