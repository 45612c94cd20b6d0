package phases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/proposal-cli/internal/config"
	"github.com/sells-group/proposal-cli/internal/ident"
	"github.com/sells-group/proposal-cli/internal/model"
)

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	rc := config.DefaultRates()
	require.NoError(t, rc.Validate())
	return NewBuilder(rc, &ident.Sequence{})
}

func testBreakdown() *model.PricingBreakdown {
	return &model.PricingBreakdown{
		Subtotal:   10550,
		FinalPrice: 10450,
		Milestones: model.Milestones{
			Design: model.MilestoneAllocation{Key: "design", Label: "Design & Architecture", Pct: 20, Amount: 2100},
			Build:  model.MilestoneAllocation{Key: "build", Label: "Build & Integration", Pct: 45, Amount: 4700},
			Test:   model.MilestoneAllocation{Key: "test", Label: "Testing & Hardening", Pct: 15, Amount: 1600},
			Deploy: model.MilestoneAllocation{Key: "deploy", Label: "Deployment & Handoff", Pct: 20, Amount: 2150},
		},
	}
}

func testExtract() *model.AuditExtract {
	return &model.AuditExtract{
		Client:  model.Client{Name: "Acme Logistics"},
		Systems: []string{"HubSpot", "QuickBooks"},
		Fixes: []model.Fix{
			{Title: "Lead routing", Description: "Route inbound leads to reps instantly"},
		},
	}
}

func TestBuildThreePhases(t *testing.T) {
	b := testBuilder(t)

	phases := b.Build(testExtract(), testBreakdown(), "standard")
	require.Len(t, phases, 3)

	assert.Equal(t, model.PhaseComplete, phases[0].Status)
	assert.Equal(t, model.PhaseCurrent, phases[1].Status)
	assert.Equal(t, model.PhaseUpcoming, phases[2].Status)

	assert.Equal(t, 1, phases[0].Ordinal)
	require.Len(t, phases[0].Milestones, 1)
	assert.Equal(t, "1.1", phases[0].Milestones[0].Ordinal)
	assert.Zero(t, phases[0].Milestones[0].Price)

	require.Len(t, phases[1].Milestones, 4)
	wantOrdinals := []string{"2.1", "2.2", "2.3", "2.4"}
	wantPrices := []int64{2100, 4700, 1600, 2150}
	for i, m := range phases[1].Milestones {
		assert.Equal(t, wantOrdinals[i], m.Ordinal)
		assert.Equal(t, wantPrices[i], m.Price)
		assert.Equal(t, "weeks", m.Duration.Unit)
		assert.GreaterOrEqual(t, m.Duration.Value, 1)
		assert.NotEmpty(t, m.ID)
	}

	require.Len(t, phases[2].Milestones, 2)
	assert.Equal(t, "3.1", phases[2].Milestones[0].Ordinal)
	assert.Zero(t, phases[2].Milestones[0].Price)
}

func TestPhaseTwoWeeksSumMilestones(t *testing.T) {
	b := testBuilder(t)

	phases := b.Build(testExtract(), testBreakdown(), "standard")
	total := 0
	for _, m := range phases[1].Milestones {
		total += m.Duration.Value
	}
	assert.Equal(t, total, phases[1].Weeks)
}

func TestIntegrationsDeliverableNeedsMultipleSystems(t *testing.T) {
	b := testBuilder(t)

	single := testExtract()
	single.Systems = []string{"HubSpot"}
	phases := b.Build(single, testBreakdown(), "standard")
	assert.False(t, hasDeliverable(phases[1], buildIntegrationsDeliverable.name))

	multi := testExtract()
	phases = b.Build(multi, testBreakdown(), "standard")
	assert.True(t, hasDeliverable(phases[1], buildIntegrationsDeliverable.name))
}

func TestAIDeliverableNeedsKeywordMatch(t *testing.T) {
	b := testBuilder(t)

	plain := testExtract()
	plain.Fixes = []model.Fix{{Title: "Email cleanup", Description: "Fix the shared email inbox"}}
	phases := b.Build(plain, testBreakdown(), "standard")
	// "email" must not trip the bare "ai" keyword.
	assert.False(t, hasDeliverable(phases[1], buildAIDeliverable.name))

	ai := testExtract()
	ai.Fixes = []model.Fix{{Title: "Invoice handling", Description: "Automate invoice intake with AI triage"}}
	phases = b.Build(ai, testBreakdown(), "standard")
	assert.True(t, hasDeliverable(phases[1], buildAIDeliverable.name))

	wordAI := testExtract()
	wordAI.Fixes = []model.Fix{{Title: "Routing", Description: "Use AI to rank leads"}}
	phases = b.Build(wordAI, testBreakdown(), "standard")
	assert.True(t, hasDeliverable(phases[1], buildAIDeliverable.name))
}

func TestTotalWeeksPressureScaling(t *testing.T) {
	b := testBuilder(t)

	assert.InDelta(t, 3.0, b.totalWeeks(15_000, "standard"), 1e-9)
	assert.InDelta(t, 3.0, b.totalWeeks(15_000, ""), 1e-9)
	assert.InDelta(t, 0.9, b.totalWeeks(15_000, "emergency"), 1e-9)
	assert.InDelta(t, 2.0, b.totalWeeks(1_000, "standard"), 1e-9) // floor
	assert.InDelta(t, 3.0, b.totalWeeks(15_000, "whenever"), 1e-9)
}

func TestDistributeWeeks(t *testing.T) {
	allocs := testBreakdown().Milestones.Ordered()

	weeks := distributeWeeks(3, allocs)
	// Each leg independently rounds up, so the sum may exceed nominal.
	assert.Equal(t, []int{1, 2, 1, 1}, weeks)

	weeks = distributeWeeks(0.9, allocs)
	assert.Equal(t, []int{1, 1, 1, 1}, weeks) // all floored at 1
}

func TestDistributeWeeksZeroDollars(t *testing.T) {
	allocs := []model.MilestoneAllocation{{Key: "a"}, {Key: "b"}, {Key: "c"}, {Key: "d"}}
	weeks := distributeWeeks(4, allocs)
	assert.Equal(t, []int{1, 1, 1, 1}, weeks)
}

func hasDeliverable(phase model.Phase, name string) bool {
	for _, m := range phase.Milestones {
		for _, d := range m.Deliverables {
			if d.Name == name {
				return true
			}
		}
	}
	return false
}
