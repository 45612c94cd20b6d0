// Package audit decodes upstream audit extracts into the canonical model.
// Extracts are a tagged union: a top-level "format" discriminator selects
// the adapter, and each adapter owns exactly one wire shape. Unknown
// fields are ignored so the upstream extractor can grow without breaking
// older readers.
package audit

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/proposal-cli/internal/model"
)

// Supported extract formats.
const (
	FormatV1 = "audit.v1"
	FormatV2 = "audit.v2"
)

// Load reads and parses an extract file.
func Load(path string) (*model.AuditExtract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "audit: read %s", path)
	}
	extract, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "audit: parse %s", path)
	}
	return extract, nil
}

// Parse decodes an extract from JSON, dispatching on its format tag.
func Parse(data []byte) (*model.AuditExtract, error) {
	var probe struct {
		Format string `json:"format"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, eris.Wrap(err, "read format tag")
	}

	var (
		extract *model.AuditExtract
		err     error
	)
	switch probe.Format {
	case FormatV1:
		extract, err = parseV1(data)
	case FormatV2:
		extract, err = parseV2(data)
	case "":
		return nil, eris.New(`missing "format" tag (expected audit.v1 or audit.v2)`)
	default:
		return nil, eris.Errorf("unknown format %q (expected audit.v1 or audit.v2)", probe.Format)
	}
	if err != nil {
		return nil, err
	}

	normalize(extract)
	if extract.Client.Name == "" {
		return nil, eris.New("extract has no client name")
	}
	return extract, nil
}

// parseV2 decodes the canonical nested shape, which matches the model
// one to one.
func parseV2(data []byte) (*model.AuditExtract, error) {
	var extract model.AuditExtract
	if err := json.Unmarshal(data, &extract); err != nil {
		return nil, eris.Wrap(err, "decode audit.v2")
	}
	return &extract, nil
}

// parseV1 decodes the legacy flat shape the first extractor emitted:
// client fields at the top level, fixes under "recommended_fixes", and
// the bleed figure under "monthly_bleed_usd".
func parseV1(data []byte) (*model.AuditExtract, error) {
	var v1 struct {
		ClientName      string            `json:"client_name"`
		Industry        string            `json:"industry"`
		Website         string            `json:"website"`
		Contact         string            `json:"contact"`
		Findings        []model.Finding   `json:"findings"`
		RecommendedFix  []model.Fix       `json:"recommended_fixes"`
		Systems         []string          `json:"systems"`
		MonthlyBleedUSD float64           `json:"monthly_bleed_usd"`
		Opportunity     model.Opportunity `json:"opportunity"`
	}
	if err := json.Unmarshal(data, &v1); err != nil {
		return nil, eris.Wrap(err, "decode audit.v1")
	}

	return &model.AuditExtract{
		Client: model.Client{
			Name:     v1.ClientName,
			Industry: v1.Industry,
			Website:  v1.Website,
			Contact:  v1.Contact,
		},
		Findings:     v1.Findings,
		Fixes:        v1.RecommendedFix,
		Systems:      v1.Systems,
		MonthlyBleed: v1.MonthlyBleedUSD,
		Opportunity:  v1.Opportunity,
	}, nil
}

// normalize trims identity fields and lowercases the enumerated ones so
// downstream keyword scans and severity ranking see one spelling.
func normalize(e *model.AuditExtract) {
	e.Client.Name = strings.TrimSpace(e.Client.Name)
	e.Client.Industry = strings.ToLower(strings.TrimSpace(e.Client.Industry))

	for i := range e.Findings {
		f := &e.Findings[i]
		f.Category = strings.TrimSpace(f.Category)
		f.Title = strings.TrimSpace(f.Title)
		f.Severity = model.Severity(strings.ToLower(strings.TrimSpace(string(f.Severity))))
	}
	for i := range e.Fixes {
		f := &e.Fixes[i]
		f.Title = strings.TrimSpace(f.Title)
		f.Complexity = strings.ToLower(strings.TrimSpace(f.Complexity))
	}

	systems := e.Systems[:0]
	for _, s := range e.Systems {
		if s = strings.TrimSpace(s); s != "" {
			systems = append(systems, s)
		}
	}
	e.Systems = systems
}
