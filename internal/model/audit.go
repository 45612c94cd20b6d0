package model

import "strings"

// Severity classifies an audit finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityHealthy  Severity = "healthy"
)

// Rank orders severities for display, most urgent first.
// Unknown severities sort after healthy.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityHealthy:
		return 2
	default:
		return 3
	}
}

// Client identifies the audited business.
type Client struct {
	Name     string `json:"name"`
	Industry string `json:"industry,omitempty"`
	Website  string `json:"website,omitempty"`
	Contact  string `json:"contact,omitempty"`
}

// Finding is a single diagnostic observation from the upstream audit.
type Finding struct {
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Impact   string   `json:"impact,omitempty"`
}

// Fix is a recommended remediation. Complexity is a free-text effort
// descriptor ("straightforward", "complex integration", ...) bucketed into
// a tier by the pricing engine.
type Fix struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Complexity  string `json:"complexity,omitempty"`
	Impact      string `json:"impact,omitempty"`
}

// Opportunity carries the modeled-upside inputs used by ROI validation.
// All fields are optional; zero values disable the modeled estimate.
type Opportunity struct {
	DailyLeads        float64 `json:"daily_leads,omitempty"`
	AvgDealValue      float64 `json:"avg_deal_value,omitempty"`
	ConversionLiftPct float64 `json:"conversion_lift_pct,omitempty"`
}

// AuditExtract is the canonical audit summary produced by the upstream
// extractor. The pipeline never mutates it.
type AuditExtract struct {
	Client       Client      `json:"client"`
	Findings     []Finding   `json:"findings,omitempty"`
	Fixes        []Fix       `json:"fixes,omitempty"`
	Systems      []string    `json:"systems,omitempty"`
	MonthlyBleed float64     `json:"monthly_bleed,omitempty"`
	Opportunity  Opportunity `json:"opportunity,omitempty"`
}

// DistinctCategories returns the finding categories in first-seen order,
// case-insensitively deduplicated.
func (a *AuditExtract) DistinctCategories() []string {
	seen := make(map[string]bool, len(a.Findings))
	var out []string
	for _, f := range a.Findings {
		key := strings.ToLower(strings.TrimSpace(f.Category))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f.Category)
	}
	return out
}

// FixText concatenates all fix titles and descriptions, lowercased, for
// keyword scans.
func (a *AuditExtract) FixText() string {
	var b strings.Builder
	for _, f := range a.Fixes {
		b.WriteString(strings.ToLower(f.Title))
		b.WriteByte(' ')
		b.WriteString(strings.ToLower(f.Description))
		b.WriteByte(' ')
	}
	return b.String()
}
