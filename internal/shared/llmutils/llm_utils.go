// Package llmutils holds small helpers for handling model output.
package llmutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bioreason/bioreason/internal/schema"
)

var (
	reThink = regexp.MustCompile(`(?s)<think>.*?</think>`)
	reFence = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
)

// Truncate shortens a string to at most n bytes, adding "..." if it was truncated.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StripThink removes <think>…</think> blocks that some models embed.
func StripThink(s string) string {
	return reThink.ReplaceAllString(s, "")
}

// StringOrDefault returns s if it's not empty, or def if s is empty.
func StringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ExtractJSON returns the JSON object embedded in a model reply: the body of
// a fenced code block if present, otherwise the span from the first '{' to
// the last '}'.
func ExtractJSON(s string) string {
	s = StripThink(s)
	if m := reFence.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return strings.TrimSpace(s)
	}
	return s[start : end+1]
}

// ToolHint generates a short hint string for a list of tool calls, e.g. `search_pubmed("finch beaks")`.
func ToolHint(tcs []schema.ToolCallRequest) string {
	parts := make([]string, 0, len(tcs))
	for _, tc := range tcs {
		var firstVal string
		for _, key := range []string{"query", "user_prompt", "url", "protein_id"} {
			if s, ok := tc.Arguments[key].(string); ok && s != "" {
				firstVal = s
				break
			}
		}
		if firstVal == "" {
			parts = append(parts, tc.Name)
			continue
		}
		if len(firstVal) > 40 {
			firstVal = firstVal[:40] + "…"
		}
		parts = append(parts, fmt.Sprintf("%s(%q)", tc.Name, firstVal))
	}
	return strings.Join(parts, ", ")
}
