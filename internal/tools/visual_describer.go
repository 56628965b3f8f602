package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bioreason/bioreason/internal/schema"
	"github.com/bioreason/bioreason/internal/shared/llmutils"
)

const visualDescriberPrompt = "You are a scientific image analyst. Describe biological images " +
	"(micrographs, gels, blots, anatomical drawings, phylogenetic figures, photographs of organisms) " +
	"objectively: what is shown, visible structures and labels, scale, and any notable features " +
	"relevant to the user's question. Do not speculate beyond what is visible."

const maxImages = 8

// VisualDescriberTool sends images to a vision-capable model and returns its
// description.
type VisualDescriberTool struct {
	provider schema.LLMProvider
	opts     schema.ChatOptions
}

// NewVisualDescriberTool creates the Layer B image tool. opts.Model should
// name a vision-capable model.
func NewVisualDescriberTool(provider schema.LLMProvider, opts schema.ChatOptions) *VisualDescriberTool {
	return &VisualDescriberTool{provider: provider, opts: opts}
}

func (t *VisualDescriberTool) Name() string { return "visual_describer" }
func (t *VisualDescriberTool) Description() string {
	return "[Layer B] Analyse one or more images given by URL (figures, micrographs, specimens) with a vision model."
}
func (t *VisualDescriberTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"user_prompt": {
				"type": "string",
				"description": "What to look for in the images"
			},
			"image_urls": {
				"type": "array",
				"items": {"type": "string"},
				"minItems": 1,
				"maxItems": 8,
				"description": "http(s) or data: URLs of the images"
			}
		},
		"required": ["user_prompt", "image_urls"]
	}`)
}

func (t *VisualDescriberTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	prompt := stringArg(params, "user_prompt")
	urls := stringsArg(params, "image_urls")
	if prompt == "" {
		return "Error: user_prompt is required", nil
	}
	if len(urls) == 0 {
		return "Error: at least one image URL is required", nil
	}
	if len(urls) > maxImages {
		urls = urls[:maxImages]
	}

	blocks := []schema.ContentBlock{{Type: "text", Text: prompt}}
	for _, u := range urls {
		if !strings.HasPrefix(u, "data:") {
			if err := validateURL(u); err != nil {
				return fmt.Sprintf("Error: invalid image URL %q: %v", u, err), nil
			}
		}
		blocks = append(blocks, schema.ContentBlock{Type: "image_url", ImageURL: u})
	}

	msgs := schema.NewMessages()
	msgs.AddSystem(visualDescriberPrompt)
	msgs.AddUser(blocks)

	resp, err := t.provider.Chat(ctx, msgs, nil, t.opts)
	if err != nil {
		return "", fmt.Errorf("visual describer: %w", err)
	}
	return strings.TrimSpace(llmutils.StripThink(resp.Text())), nil
}
