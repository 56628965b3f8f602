// Package modes defines reasoning modes: the prompt framing and tool subset
// used to answer a biological query.
package modes

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/bioreason/bioreason/internal/schema"
)

// ToolSet lists the tool names a mode requires from each layer, in order.
type ToolSet struct {
	A []string `yaml:"a,omitempty" json:"a,omitempty"`
	B []string `yaml:"b,omitempty" json:"b,omitempty"`
	C []string `yaml:"c,omitempty" json:"c,omitempty"`
}

// ToolRef names one required tool and the layer that must provide it.
type ToolRef struct {
	Layer schema.Layer
	Name  string
}

// ForLayer returns the tool names required from layer l.
func (ts ToolSet) ForLayer(l schema.Layer) []string {
	switch l {
	case schema.LayerA:
		return ts.A
	case schema.LayerB:
		return ts.B
	case schema.LayerC:
		return ts.C
	}
	return nil
}

// Refs returns every (layer, name) pair, layer A first.
func (ts ToolSet) Refs() []ToolRef {
	refs := make([]ToolRef, 0, len(ts.A)+len(ts.B)+len(ts.C))
	for _, l := range schema.Layers {
		for _, n := range ts.ForLayer(l) {
			refs = append(refs, ToolRef{Layer: l, Name: n})
		}
	}
	return refs
}

// Len returns the number of required tools.
func (ts ToolSet) Len() int { return len(ts.A) + len(ts.B) + len(ts.C) }

// Definition describes one reasoning mode.
//
// SystemPrompt is a text/template; {{.Query}} and {{.Mode}} are available.
type Definition struct {
	ID           string   `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Description  string   `yaml:"description" json:"description"`
	Aliases      []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Keywords     []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	SystemPrompt string   `yaml:"system_prompt" json:"system_prompt"`
	Tools        ToolSet  `yaml:"tools" json:"tools"`
}

type promptData struct {
	Query string
	Mode  string
}

// Validate checks the definition is usable.
func (d Definition) Validate() error {
	if normalize(d.ID) == "" {
		return errors.New("mode id is empty")
	}
	if strings.Contains(d.SystemPrompt, "{{") {
		if _, err := template.New(d.ID).Option("missingkey=error").Parse(d.SystemPrompt); err != nil {
			return fmt.Errorf("mode %q: parse system prompt: %w", d.ID, err)
		}
	}
	for _, ref := range d.Tools.Refs() {
		if strings.TrimSpace(ref.Name) == "" {
			return fmt.Errorf("mode %q: empty tool name in %s", d.ID, ref.Layer)
		}
	}
	return nil
}

// RenderPrompt returns the system prompt with the query substituted.
func (d Definition) RenderPrompt(query string) (string, error) {
	if !strings.Contains(d.SystemPrompt, "{{") {
		return d.SystemPrompt, nil
	}
	tmpl, err := template.New(d.ID).Option("missingkey=error").Parse(d.SystemPrompt)
	if err != nil {
		return "", fmt.Errorf("mode %q: parse system prompt: %w", d.ID, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, promptData{Query: query, Mode: d.ID}); err != nil {
		return "", fmt.Errorf("mode %q: render system prompt: %w", d.ID, err)
	}
	return sb.String(), nil
}

// Title returns Name, falling back to the id.
func (d Definition) Title() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
