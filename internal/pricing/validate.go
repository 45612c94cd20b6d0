package pricing

import (
	"github.com/sells-group/proposal-cli/internal/model"
)

// Validation check names.
const (
	CheckHardFloor = "hard_floor"
	CheckPayback   = "payback"
)

// validateValue runs the advisory enterprise checks: guaranteed savings
// against the hard floor, and payback months against the ceiling. Notes
// never alter the price.
func (e *Engine) validateValue(extract *model.AuditExtract, finalPrice int64) []model.ValidationNote {
	rules := e.rates.Validation
	opp := extract.Opportunity

	hardAnnual := extract.MonthlyBleed * 12
	modeledMonthly := opp.DailyLeads * 30 * (opp.ConversionLiftPct / 100) * opp.AvgDealValue

	var notes []model.ValidationNote

	floorAmount := float64(finalPrice) * rules.HardFloorPct / 100
	floorPassed := hardAnnual >= floorAmount
	floorMsg := usd.Sprintf("hard savings $%.0f/yr vs floor $%.0f (%.0f%% of price)",
		hardAnnual, floorAmount, rules.HardFloorPct)
	notes = append(notes, model.ValidationNote{
		Check:   CheckHardFloor,
		Passed:  floorPassed,
		Message: floorMsg,
	})

	monthlyValue := extract.MonthlyBleed + modeledMonthly
	payback := model.ValidationNote{Check: CheckPayback}
	if monthlyValue > 0 {
		months := float64(finalPrice) / monthlyValue
		payback.Passed = months <= rules.MaxPaybackMonths
		payback.Message = usd.Sprintf("payback %.1f months on $%.0f/mo combined value (max %.0f)",
			months, monthlyValue, rules.MaxPaybackMonths)
	} else {
		payback.Passed = false
		payback.Message = "no recoverable monthly value identified in the audit"
	}
	notes = append(notes, payback)

	return notes
}
