package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bioreason/bioreason/internal/schema"
	"github.com/bioreason/bioreason/internal/shared/llmutils"
)

// DefaultParametricPrompt frames Layer A recall.
const DefaultParametricPrompt = "You are an expert biologist with broad, textbook-level knowledge of " +
	"molecular biology, genetics, physiology, ecology and evolution. Answer the request from your own " +
	"knowledge. Be precise, name the organisms, genes or structures involved, and say explicitly when " +
	"something is uncertain or contested."

// ParametricMemoryTool answers a prompt from the language model's own
// knowledge, without any external lookup.
type ParametricMemoryTool struct {
	provider     schema.LLMProvider
	systemPrompt string
	opts         schema.ChatOptions
}

// NewParametricMemoryTool creates the Layer A recall tool. An empty
// systemPrompt uses DefaultParametricPrompt.
func NewParametricMemoryTool(provider schema.LLMProvider, systemPrompt string, opts schema.ChatOptions) *ParametricMemoryTool {
	if systemPrompt == "" {
		systemPrompt = DefaultParametricPrompt
	}
	return &ParametricMemoryTool{provider: provider, systemPrompt: systemPrompt, opts: opts}
}

func (t *ParametricMemoryTool) Name() string { return "parametric_memory" }
func (t *ParametricMemoryTool) Description() string {
	return "[Layer A] Ask a biology expert model to recall established knowledge (definitions, mechanisms, classic studies) from its parametric memory."
}
func (t *ParametricMemoryTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"user_prompt": {
				"type": "string",
				"description": "The focused question to answer from background knowledge"
			}
		},
		"required": ["user_prompt"]
	}`)
}

func (t *ParametricMemoryTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	prompt := stringArg(params, "user_prompt")
	if prompt == "" {
		return "Error: user_prompt is required", nil
	}

	msgs := schema.NewMessages()
	msgs.AddSystem(t.systemPrompt)
	msgs.AddUser(prompt)

	resp, err := t.provider.Chat(ctx, msgs, nil, t.opts)
	if err != nil {
		return "", fmt.Errorf("parametric memory: %w", err)
	}
	return strings.TrimSpace(llmutils.StripThink(resp.Text())), nil
}
