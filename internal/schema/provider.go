package schema

import "context"

// ChatOptions configures a single model-completion request.
type ChatOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
	// JSONMode asks the backend for a JSON object response when supported.
	JSONMode bool
}

func NewChatOptions(model string, maxTokens int, temperature float64) ChatOptions {
	return ChatOptions{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// ToolCallRequest is one tool invocation requested by the model.
type ToolCallRequest struct {
	Id        string
	Name      string
	Arguments map[string]any
}

// Usage counts tokens consumed by one completion.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// LLMResponse is the normalised response from any model backend.
type LLMResponse struct {
	Content          *string // nil when the response contains only tool calls
	ToolCalls        []ToolCallRequest
	FinishReason     string
	Usage            Usage
	ReasoningContent *string
}

// HasToolCalls reports whether the response requests at least one tool.
func (r LLMResponse) HasToolCalls() bool { return len(r.ToolCalls) > 0 }

// Text returns the response content or "" when there is none.
func (r LLMResponse) Text() string {
	if r.Content == nil {
		return ""
	}
	return *r.Content
}

// LLMProvider is the model-completion collaborator. Transient failures are
// retried by the implementation; an error returned here is final.
type LLMProvider interface {
	Chat(ctx context.Context, messages Messages, tools []map[string]any, opts ChatOptions) (LLMResponse, error)
	DefaultModel() string
}
