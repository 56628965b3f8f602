package modes

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const catalogYAML = `modes:
  - id: immunological
    name: Immunological
    description: Reasons about immune recognition and response.
    aliases: [immune]
    keywords: [antigen, antibody]
    system_prompt: |
      You are an Immunology Reasoning Expert. Question: {{.Query}}
    tools:
      a: [parametric_memory]
      c: [search_literature, uniprot_search]
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modes.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	r := NewRegistry()
	_ = DefineBuiltin(r)

	n, err := LoadCatalog(r, writeCatalog(t, catalogYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 mode loaded, got %d", n)
	}
	def, err := r.Resolve("immune")
	if err != nil {
		t.Fatal(err)
	}
	if def.ID != "immunological" || len(def.Tools.C) != 2 || def.Tools.A[0] != "parametric_memory" {
		t.Errorf("unexpected definition %+v", def)
	}
	prompt, _ := def.RenderPrompt("How do B cells mature?")
	if prompt != "You are an Immunology Reasoning Expert. Question: How do B cells mature?\n" {
		t.Errorf("unexpected prompt %q", prompt)
	}
}

func TestLoadCatalog_CollidesWithBuiltin(t *testing.T) {
	r := NewRegistry()
	_ = DefineBuiltin(r)
	path := writeCatalog(t, "modes:\n  - id: mechanistic\n    system_prompt: dup\n")
	if _, err := LoadCatalog(r, path); !errors.Is(err, ErrDuplicateMode) {
		t.Fatalf("expected ErrDuplicateMode, got %v", err)
	}
}

func TestLoadCatalog_Errors(t *testing.T) {
	r := NewRegistry()
	if _, err := LoadCatalog(r, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected missing file error")
	}
	if _, err := LoadCatalog(r, writeCatalog(t, "modes: [: bad")); err == nil {
		t.Error("expected YAML error")
	}
}

func TestMarshalCatalog_RoundTripsThroughRegistry(t *testing.T) {
	data, err := MarshalCatalog(Builtin()[:2])
	if err != nil {
		t.Fatal(err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRegistry()
	for _, def := range c.Modes {
		if err := r.Define(def.ID, def); err != nil {
			t.Fatalf("define %s: %v", def.ID, err)
		}
	}
	if !r.Has("phylogenetic") || !r.Has("adaptive") {
		t.Errorf("expected marshalled modes and aliases to load, got %v", c.Modes)
	}
}
