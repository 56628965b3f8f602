package triage

import (
	"context"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/bioreason/bioreason/internal/schema"
	"github.com/bioreason/bioreason/internal/shared/llmutils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const selectorSystemPrompt = "You are an expert biological reasoning mode selector. Always respond with valid JSON."

// LLMClassifier asks the model to choose a mode.
type LLMClassifier struct {
	provider schema.LLMProvider
	modes    ModeLister
	model    string
}

// NewLLMClassifier creates an LLM-backed classifier. An empty model uses
// the provider default.
func NewLLMClassifier(provider schema.LLMProvider, ml ModeLister, model string) *LLMClassifier {
	return &LLMClassifier{provider: provider, modes: ml, model: model}
}

type llmSelection struct {
	SelectedMode string   `json:"selected_mode"`
	Confidence   *float64 `json:"confidence"`
	Reasoning    string   `json:"reasoning"`
}

// Classify implements Classifier. The returned mode is lower-cased but not
// checked against the registry; callers decide how to treat unknown modes.
func (c *LLMClassifier) Classify(ctx context.Context, query string) (Classification, error) {
	msgs := schema.NewMessages()
	msgs.AddSystem(selectorSystemPrompt)
	msgs.AddUser(c.prompt(query))

	opts := schema.NewChatOptions(llmutils.StringOrDefault(c.model, c.provider.DefaultModel()), 500, 0.1)
	opts.JSONMode = true

	resp, err := c.provider.Chat(ctx, msgs, nil, opts)
	if err != nil {
		return Classification{}, fmt.Errorf("llm triage: %w", err)
	}

	var sel llmSelection
	if err := json.UnmarshalFromString(llmutils.ExtractJSON(resp.Text()), &sel); err != nil {
		return Classification{}, fmt.Errorf("llm triage: parse response: %w", err)
	}

	mode := strings.ToLower(strings.TrimSpace(sel.SelectedMode))
	if mode == "" {
		return Classification{}, fmt.Errorf("llm triage: response has no selected_mode")
	}
	confidence := 0.5
	if sel.Confidence != nil {
		confidence = clamp(*sel.Confidence)
	}
	return Classification{
		Mode:       mode,
		Confidence: confidence,
		Reasoning:  llmutils.StringOrDefault(sel.Reasoning, "LLM analysis completed"),
		Method:     MethodLLM,
	}, nil
}

func (c *LLMClassifier) prompt(query string) string {
	var sb strings.Builder
	sb.WriteString("You are an expert biological reasoning mode selector. ")
	sb.WriteString("Analyze the user's question and select the most appropriate reasoning mode.\n\n")
	sb.WriteString("Available reasoning modes:\n")
	for _, def := range c.modes.Definitions() {
		desc := llmutils.StringOrDefault(def.Description, "Reasoning for "+def.ID)
		fmt.Fprintf(&sb, "**%s**: %s", strings.ToUpper(def.ID), desc)
		if len(def.Keywords) > 0 {
			fmt.Fprintf(&sb, " (keywords: %s)", strings.Join(def.Keywords, ", "))
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\nUser Question: %q\n\n", query)
	sb.WriteString("Respond in JSON format:\n")
	sb.WriteString("{\n    \"selected_mode\": \"mode_name\",\n    \"confidence\": 0.95,\n")
	sb.WriteString("    \"reasoning\": \"Explanation of why this mode was selected.\"\n}\n\n")
	sb.WriteString("The confidence should be between 0 and 1.")
	return sb.String()
}

func clamp(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
