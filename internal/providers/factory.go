package providers

import (
	"time"

	"github.com/bioreason/bioreason/internal/schema"
)

// Params are the raw values needed to construct a schema.LLMProvider.
// Extracted from config.Config by the caller to avoid an import cycle.
type Params struct {
	APIKey       string
	APIBase      string
	ExtraHeaders map[string]string
	DefaultModel string
	ProviderName string // registry name, e.g. "openrouter", "deepseek"
	Timeout      time.Duration
	MaxRetries   int
}

// New creates the model-completion provider for p. Every supported backend
// speaks the OpenAI chat-completions protocol.
func New(p Params) schema.LLMProvider {
	return NewOpenAIProvider(p)
}
