// Package narrative fills the pending text slots of an assembled proposal
// by prompting a generation backend. It owns the prompt catalog, the model
// fallback policy, batched execution, and output cleanup. Pricing never
// flows through here: a slot that cannot be filled stays pending and the
// document remains valid.
package narrative

import (
	_ "embed"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// Output kinds a prompt can declare. Fragment output is kept as prose;
// list output is split into lines and re-joined after cleanup.
const (
	KindFragment = "fragment"
	KindList     = "list"
)

// Catalog maps slot names to the prompts that fill them.
type Catalog struct {
	Defaults PromptDefaults        `yaml:"defaults"`
	Slots    map[string]PromptSpec `yaml:"slots"`
}

// PromptDefaults holds catalog-wide generation defaults.
type PromptDefaults struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`
}

// PromptSpec configures one slot's prompt and its output constraints.
// Length and forbidden-term constraints are advisory: violations are
// logged, never failed.
type PromptSpec struct {
	ID           string   `yaml:"id"`
	Kind         string   `yaml:"kind"`
	System       string   `yaml:"system"`
	Template     string   `yaml:"template"`
	MaxChars     int      `yaml:"max_chars"`
	MaxItems     int      `yaml:"max_items"`
	ItemMaxChars int      `yaml:"item_max_chars"`
	MaxTokens    int64    `yaml:"max_tokens"`
	Temperature  float64  `yaml:"temperature"`
	Forbidden    []string `yaml:"forbidden"`
}

// LoadCatalog reads a prompt catalog from a YAML file, or the embedded
// catalog when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultPromptsYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "narrative: read prompts %s", path)
		}
		data = b
	}

	// The YAML has a top-level "prompts" key
	var wrapper struct {
		Prompts Catalog `yaml:"prompts"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "narrative: parse prompts")
	}

	c := &wrapper.Prompts
	// Apply defaults to slots missing temperature/token limits
	for name, spec := range c.Slots {
		if spec.Kind == "" {
			spec.Kind = KindFragment
		}
		if spec.Temperature == 0 {
			spec.Temperature = c.Defaults.Temperature
		}
		if spec.MaxTokens == 0 {
			spec.MaxTokens = c.Defaults.MaxTokens
		}
		c.Slots[name] = spec
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	if len(c.Slots) == 0 {
		return eris.New("narrative: prompt catalog has no slots")
	}
	for name, spec := range c.Slots {
		switch spec.Kind {
		case KindFragment, KindList:
		default:
			return eris.Errorf("narrative: prompt %s: unknown kind %q", name, spec.Kind)
		}
		if strings.TrimSpace(spec.Template) == "" {
			return eris.Errorf("narrative: prompt %s: empty template", name)
		}
		if spec.Kind == KindList && spec.MaxItems <= 0 {
			return eris.Errorf("narrative: prompt %s: list prompts need max_items", name)
		}
	}
	return nil
}

// Spec returns the prompt for a slot name. A slot with no prompt is a
// catalog gap, not a provider failure, so the error is not retryable.
func (c *Catalog) Spec(name string) (PromptSpec, error) {
	spec, ok := c.Slots[name]
	if !ok {
		return PromptSpec{}, eris.Errorf("narrative: no prompt for slot %q", name)
	}
	return spec, nil
}

// SlotNames lists the catalog's slot names in sorted order.
func (c *Catalog) SlotNames() []string {
	names := make([]string, 0, len(c.Slots))
	for name := range c.Slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render substitutes {{key}} tokens in the template with context values.
// Unknown tokens are left in place.
func (p PromptSpec) Render(ctx map[string]string) string {
	pairs := make([]string, 0, len(ctx)*2)
	for k, v := range ctx {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(p.Template)
}
