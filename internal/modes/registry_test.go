package modes

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/bioreason/bioreason/internal/schema"
)

func TestDefine_DuplicateMode(t *testing.T) {
	r := NewRegistry()
	if err := r.Define("teleonomic", Definition{Aliases: []string{"adaptive"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"teleonomic", " Teleonomic ", "adaptive"} {
		err := r.Define(id, Definition{})
		if !errors.Is(err, ErrDuplicateMode) {
			t.Errorf("Define(%q): expected ErrDuplicateMode, got %v", id, err)
		}
	}
	if err := r.Define("other", Definition{Aliases: []string{"ADAPTIVE"}}); !errors.Is(err, ErrDuplicateMode) {
		t.Errorf("expected alias collision to fail, got %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("failed definitions must not be stored, got %d modes", r.Len())
	}
}

func TestResolve(t *testing.T) {
	r := NewRegistry()
	_ = r.Define("Ontogenetic", Definition{Name: "Developmental", Aliases: []string{"developmental"}})

	for _, id := range []string{"ontogenetic", "ONTOGENETIC", "developmental"} {
		def, err := r.Resolve(id)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", id, err)
		}
		if def.ID != "ontogenetic" {
			t.Errorf("Resolve(%q) returned id %q", id, def.ID)
		}
	}

	_, err := r.Resolve("bogus")
	if !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
	var unknown *UnknownModeError
	if !errors.As(err, &unknown) || unknown.Mode != "bogus" {
		t.Errorf("expected UnknownModeError naming bogus, got %v", err)
	}
	if r.Has("bogus") || !r.Has("developmental") {
		t.Error("unexpected Has results")
	}
}

func TestDefine_RejectsInvalid(t *testing.T) {
	r := NewRegistry()
	if err := r.Define("  ", Definition{}); err == nil {
		t.Error("expected empty id to be rejected")
	}
	if err := r.Define("broken", Definition{SystemPrompt: "Answer {{.Query"}); err == nil {
		t.Error("expected bad template to be rejected")
	}
	if err := r.Define("blank", Definition{Tools: ToolSet{C: []string{" "}}}); err == nil {
		t.Error("expected empty tool name to be rejected")
	}
}

func TestListModes_DefinitionOrder(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"spatial", "temporal", "comparative"} {
		_ = r.Define(id, Definition{})
	}
	if got := slices.Collect(r.ListModes()); !slices.Equal(got, []string{"spatial", "temporal", "comparative"}) {
		t.Errorf("unexpected order %v", got)
	}
}

func TestRenderPrompt(t *testing.T) {
	def := Definition{ID: "teleonomic", SystemPrompt: "Mode {{.Mode}}. Question: {{.Query}}"}
	got, err := def.RenderPrompt("Why do finches differ?")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Mode teleonomic. Question: Why do finches differ?" {
		t.Errorf("unexpected prompt %q", got)
	}

	plain := Definition{ID: "x", SystemPrompt: "No placeholders {here}"}
	if got, _ := plain.RenderPrompt("q"); got != plain.SystemPrompt {
		t.Errorf("plain prompts must be returned unchanged, got %q", got)
	}
	if _, err := (Definition{ID: "x", SystemPrompt: "{{.Missing}}"}).RenderPrompt("q"); err == nil {
		t.Error("expected unknown template field to fail")
	}
}

func TestToolSet(t *testing.T) {
	ts := ToolSet{A: []string{"parametric_memory"}, C: []string{"search_literature", "web_fetch"}}
	if ts.Len() != 3 || len(ts.ForLayer(schema.LayerB)) != 0 {
		t.Errorf("unexpected tool set sizes")
	}
	refs := ts.Refs()
	if refs[0] != (ToolRef{Layer: schema.LayerA, Name: "parametric_memory"}) || refs[2].Name != "web_fetch" {
		t.Errorf("unexpected refs %v", refs)
	}
}

func TestBuiltin(t *testing.T) {
	r := NewRegistry()
	if err := DefineBuiltin(r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Len() != 11 {
		t.Errorf("expected 11 built-in modes, got %d", r.Len())
	}
	if !r.Has(DefaultMode) {
		t.Errorf("default mode %s must be built in", DefaultMode)
	}
	for _, def := range r.Definitions() {
		if def.SystemPrompt == "" || len(def.Keywords) == 0 || def.Tools.Len() == 0 {
			t.Errorf("built-in mode %s is incomplete", def.ID)
		}
	}
	def, _ := r.Resolve("teleonomic")
	if !slices.Equal(def.Tools.C, []string{"search_literature", "web_fetch"}) {
		t.Errorf("unexpected teleonomic layer C tools %v", def.Tools.C)
	}

	desc, err := r.Describe("developmental")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(desc, "(ontogenetic)") || !strings.Contains(desc, "layer A:") {
		t.Errorf("unexpected description %q", desc)
	}
}
