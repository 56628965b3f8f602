package llmutils

import (
	"strings"
	"testing"

	"github.com/bioreason/bioreason/internal/schema"
)

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`: `{"a":1}`,
		"Here you go:\n```json\n{\"a\": 1}\n```\nDone": `{"a": 1}`,
		"```\n{\"b\":2}\n```":                          `{"b":2}`,
		"<think>{\"no\":0}</think>prefix {\"c\":3} suffix": `{"c":3}`,
		"no json here": "no json here",
	}
	for in, want := range cases {
		if got := ExtractJSON(in); got != want {
			t.Errorf("ExtractJSON(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripThink(t *testing.T) {
	got := StripThink("<think>\nplan the answer\n</think>Beaks track diet.")
	if got != "Beaks track diet." {
		t.Errorf("unexpected %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if Truncate("abc", 5) != "abc" || Truncate("abcdef", 3) != "abc..." {
		t.Error("unexpected truncation")
	}
}

func TestToolHint(t *testing.T) {
	hint := ToolHint([]schema.ToolCallRequest{
		{Name: "search_literature", Arguments: map[string]any{"query": "finch beaks"}},
		{Name: "visual_describer", Arguments: map[string]any{"image_urls": []any{"x"}}},
		{Name: "web_fetch", Arguments: map[string]any{"url": "https://example.org/" + strings.Repeat("a", 60)}},
	})
	if !strings.HasPrefix(hint, `search_literature("finch beaks"), visual_describer, web_fetch("https://example.org/`) {
		t.Errorf("unexpected hint %q", hint)
	}
	if !strings.Contains(hint, "…") {
		t.Errorf("expected long argument to be shortened, got %q", hint)
	}
}
