package providers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/bioreason/bioreason/internal/schema"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultMaxTokens = 4096

// OpenAIProvider talks to any OpenAI-compatible chat-completions endpoint
// through the official SDK. Transient failures are retried by the SDK.
type OpenAIProvider struct {
	client       openai.Client
	apiBase      string
	defaultModel string
	gateway      *ProviderSpec // non-nil for gateway/local providers
	spec         *ProviderSpec // non-nil for standard providers
}

// NewOpenAIProvider constructs a provider from raw config values.
func NewOpenAIProvider(p Params) *OpenAIProvider {
	gateway := FindGateway(p.ProviderName, p.APIKey, p.APIBase)

	var spec *ProviderSpec
	if gateway == nil {
		spec = FindByModel(p.DefaultModel)
		if spec == nil {
			spec = FindByName(p.ProviderName)
		}
	}

	base := p.APIBase
	if base == "" {
		switch {
		case gateway != nil && gateway.DefaultAPIBase != "":
			base = gateway.DefaultAPIBase
		case spec != nil && spec.DefaultAPIBase != "":
			base = spec.DefaultAPIBase
		default:
			base = "https://api.openai.com/v1"
		}
	}
	base = strings.TrimRight(base, "/")

	opts := []option.RequestOption{option.WithBaseURL(base + "/")}
	if p.APIKey != "" {
		opts = append(opts, option.WithAPIKey(p.APIKey))
	}
	for k, v := range p.ExtraHeaders {
		opts = append(opts, option.WithHeader(k, v))
	}
	if p.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(p.Timeout))
	}
	if p.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(p.MaxRetries))
	}

	return &OpenAIProvider{
		client:       openai.NewClient(opts...),
		apiBase:      base,
		defaultModel: p.DefaultModel,
		gateway:      gateway,
		spec:         spec,
	}
}

func (p *OpenAIProvider) DefaultModel() string { return p.defaultModel }

// APIBase returns the effective endpoint.
func (p *OpenAIProvider) APIBase() string { return p.apiBase }

// Chat implements schema.LLMProvider.
func (p *OpenAIProvider) Chat(
	ctx context.Context,
	messages schema.Messages,
	tools []map[string]any,
	opts schema.ChatOptions,
) (schema.LLMResponse, error) {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.resolveModel(model)),
		Messages:    toChatMessages(messages),
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(opts.Temperature),
	}
	if len(tools) > 0 {
		params.Tools = toChatTools(tools)
	}
	if opts.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	completion, err := p.client.Chat.Completions.New(ctx, params, p.modelOverrides(model)...)
	if err != nil {
		return schema.LLMResponse{}, fmt.Errorf("chat completion (%s): %w", model, err)
	}
	return parseCompletion(completion)
}

// resolveModel strips routing prefixes so the endpoint receives the model
// name it expects. Gateways keep the "vendor/model" form they route on.
func (p *OpenAIProvider) resolveModel(model string) string {
	if p.gateway != nil {
		if p.gateway.StripModelPrefix {
			if i := strings.LastIndex(model, "/"); i >= 0 {
				return model[i+1:]
			}
			return model
		}
		return stripPrefix(model, p.gateway.RoutePrefix)
	}

	if p.spec != nil {
		for _, pfx := range []string{p.spec.RoutePrefix, p.spec.Name} {
			if m := stripPrefix(model, pfx); m != model {
				return m
			}
		}
	}
	if head, tail, ok := strings.Cut(model, "/"); ok {
		if FindByName(strings.ReplaceAll(strings.ToLower(head), "-", "_")) != nil {
			return tail
		}
	}
	return model
}

func stripPrefix(model, pfx string) string {
	if pfx == "" {
		return model
	}
	full := pfx + "/"
	if strings.HasPrefix(strings.ToLower(model), full) {
		return model[len(full):]
	}
	return model
}

func (p *OpenAIProvider) modelOverrides(model string) []option.RequestOption {
	spec := p.spec
	if spec == nil {
		spec = FindByModel(model)
	}
	if spec == nil {
		return nil
	}
	modelLower := strings.ToLower(model)
	for _, ov := range spec.ModelOverrides {
		if !strings.Contains(modelLower, strings.ToLower(ov.Pattern)) {
			continue
		}
		out := make([]option.RequestOption, 0, len(ov.Overrides))
		for k, v := range ov.Overrides {
			out = append(out, option.WithJSONSet(k, v))
		}
		return out
	}
	return nil
}

// ---------------------------------------------------------------------------
// Request conversion
// ---------------------------------------------------------------------------

func toChatMessages(messages schema.Messages) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages.Messages))
	for _, m := range messages.Messages {
		switch m.Role {
		case schema.RoleSystem:
			out = append(out, openai.SystemMessage(m.Text()))

		case schema.RoleUser:
			if blocks, ok := m.Content.([]schema.ContentBlock); ok {
				out = append(out, openai.UserMessage(toContentParts(blocks)))
			} else {
				out = append(out, openai.UserMessage(m.Text()))
			}

		case schema.RoleAssistant:
			out = append(out, toAssistantMessage(m))

		case schema.RoleTool:
			out = append(out, openai.ToolMessage(m.Text(), m.ToolCallID))
		}
	}
	return out
}

func toContentParts(blocks []schema.ContentBlock) []openai.ChatCompletionContentPartUnionParam {
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case "text":
			parts = append(parts, openai.TextContentPart(b.Text))
		case "image_url":
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: b.ImageURL,
			}))
		}
	}
	return parts
}

func toAssistantMessage(m schema.Message) openai.ChatCompletionMessageParamUnion {
	msg := &openai.ChatCompletionAssistantMessageParam{}
	if text := m.Text(); text != "" {
		msg.Content = openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(text)}
	}
	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: tc.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      tc.Name,
					Arguments: tc.ArgumentsJSON(),
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: msg}
}

func toChatTools(defs []map[string]any) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(defs))
	for _, d := range defs {
		fn, _ := d["function"].(map[string]any)
		if fn == nil {
			continue
		}
		name, _ := fn["name"].(string)
		desc, _ := fn["description"].(string)
		params, _ := fn["parameters"].(map[string]any)
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		out = append(out, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        name,
			Description: openai.String(desc),
			Parameters:  shared.FunctionParameters(params),
		}))
	}
	return out
}

// ---------------------------------------------------------------------------
// Response conversion
// ---------------------------------------------------------------------------

func parseCompletion(c *openai.ChatCompletion) (schema.LLMResponse, error) {
	if c == nil || len(c.Choices) == 0 {
		return schema.LLMResponse{}, fmt.Errorf("empty choices in response")
	}
	choice := c.Choices[0]
	msg := choice.Message

	var content *string
	if msg.Content != "" {
		s := msg.Content
		content = &s
	}

	var reasoning *string
	if f, ok := msg.JSON.ExtraFields["reasoning_content"]; ok {
		var s string
		if err := json.UnmarshalFromString(f.Raw(), &s); err == nil && s != "" {
			reasoning = &s
		}
	}

	var toolCalls []schema.ToolCallRequest
	for _, tc := range msg.ToolCalls {
		args, err := repairJSON(tc.Function.Arguments)
		if err != nil {
			slog.Warn("Failed to parse tool arguments", "tool", tc.Function.Name, "err", err)
		}
		id := tc.ID
		if id == "" {
			id = "call_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
		}
		toolCalls = append(toolCalls, schema.ToolCallRequest{
			Id:        id,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	finish := choice.FinishReason
	if finish == "" {
		finish = "stop"
	}

	return schema.LLMResponse{
		Content:      content,
		ToolCalls:    toolCalls,
		FinishReason: finish,
		Usage: schema.Usage{
			InputTokens:  int(c.Usage.PromptTokens),
			OutputTokens: int(c.Usage.CompletionTokens),
		},
		ReasoningContent: reasoning,
	}, nil
}

// repairJSON decodes tool arguments, retrying after trimming trailing
// garbage. Some models emit truncated or over-closed argument objects.
func repairJSON(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}

	var out map[string]any
	if err := json.UnmarshalFromString(raw, &out); err == nil {
		return out, nil
	}

	stripped := strings.TrimRight(raw, " \t\n\r}]")
	if !strings.HasSuffix(stripped, "}") {
		stripped += "}"
	}
	out = nil
	if err := json.UnmarshalFromString(stripped, &out); err == nil {
		return out, nil
	}

	if i := strings.LastIndex(raw, "}"); i >= 0 {
		out = nil
		if err := json.UnmarshalFromString(raw[:i+1], &out); err == nil {
			return out, nil
		}
	}

	return map[string]any{}, fmt.Errorf("cannot repair JSON: %s", raw)
}
