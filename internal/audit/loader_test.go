package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/proposal-cli/internal/model"
)

const v2Extract = `{
	"format": "audit.v2",
	"client": {"name": "  Acme Plumbing  ", "industry": "Trades", "website": "https://acme.example"},
	"findings": [
		{"category": "lead_capture", "severity": "CRITICAL", "title": " Missed calls ", "impact": "Lost jobs"},
		{"category": "scheduling", "severity": "warning", "title": "Manual booking"}
	],
	"fixes": [
		{"title": "Call answering", "description": "Automated call answering", "complexity": "Moderate"}
	],
	"systems": ["CRM", "  ", "Phone"],
	"monthly_bleed": 4200,
	"opportunity": {"daily_leads": 6, "avg_deal_value": 900, "conversion_lift_pct": 10},
	"extractor_build": "2026-08-01"
}`

const v1Extract = `{
	"format": "audit.v1",
	"client_name": "Acme Plumbing",
	"industry": "trades",
	"website": "https://acme.example",
	"findings": [{"category": "lead_capture", "severity": "critical", "title": "Missed calls"}],
	"recommended_fixes": [{"title": "Call answering", "description": "Automated answering", "complexity": "moderate"}],
	"systems": ["CRM", "Phone"],
	"monthly_bleed_usd": 4200,
	"opportunity": {"daily_leads": 6}
}`

func TestParseV2(t *testing.T) {
	e, err := Parse([]byte(v2Extract))
	require.NoError(t, err)

	assert.Equal(t, "Acme Plumbing", e.Client.Name, "name trimmed")
	assert.Equal(t, "trades", e.Client.Industry, "industry lowercased")
	require.Len(t, e.Findings, 2)
	assert.Equal(t, model.SeverityCritical, e.Findings[0].Severity, "severity lowercased")
	assert.Equal(t, "Missed calls", e.Findings[0].Title)
	assert.Equal(t, []string{"CRM", "Phone"}, e.Systems, "blank systems dropped")
	assert.Equal(t, 4200.0, e.MonthlyBleed)
	assert.Equal(t, 6.0, e.Opportunity.DailyLeads)
}

func TestParseV1MatchesV2(t *testing.T) {
	v1, err := Parse([]byte(v1Extract))
	require.NoError(t, err)

	assert.Equal(t, "Acme Plumbing", v1.Client.Name)
	assert.Equal(t, "https://acme.example", v1.Client.Website)
	require.Len(t, v1.Fixes, 1)
	assert.Equal(t, "Call answering", v1.Fixes[0].Title)
	assert.Equal(t, 4200.0, v1.MonthlyBleed)
	assert.Equal(t, []string{"CRM", "Phone"}, v1.Systems)
}

func TestParseRejectsMissingFormat(t *testing.T) {
	_, err := Parse([]byte(`{"client": {"name": "Acme"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format")
}

func TestParseRejectsUnknownFormat(t *testing.T) {
	_, err := Parse([]byte(`{"format": "audit.v9", "client": {"name": "Acme"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit.v9")
	assert.Contains(t, err.Error(), "audit.v2")
}

func TestParseRejectsMissingClientName(t *testing.T) {
	_, err := Parse([]byte(`{"format": "audit.v2", "client": {"name": "   "}}`))
	assert.Error(t, err)
}

func TestParseRejectsBadJSON(t *testing.T) {
	_, err := Parse([]byte(`{"format": `))
	assert.Error(t, err)
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extract.json")
	require.NoError(t, os.WriteFile(path, []byte(v2Extract), 0o644))

	e, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme Plumbing", e.Client.Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.json")
}
