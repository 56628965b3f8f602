package providers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bioreason/bioreason/internal/schema"
)

// chatServer serves one canned chat-completion body and captures the request.
type chatServer struct {
	mu   sync.Mutex
	body map[string]any
	path string
	auth string
}

func (s *chatServer) start(t *testing.T, response string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.path = r.URL.Path
		s.auth = r.Header.Get("Authorization")
		s.body = nil
		_ = json.Unmarshal(raw, &s.body)
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const toolCallResponse = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "test-model",
  "choices": [{
    "index": 0,
    "finish_reason": "tool_calls",
    "message": {
      "role": "assistant",
      "content": null,
      "reasoning_content": "look it up",
      "tool_calls": [{
        "id": "call_abc",
        "type": "function",
        "function": {"name": "search_literature", "arguments": "{\"query\":\"finch beaks\"}"}
      }, {
        "id": "",
        "type": "function",
        "function": {"name": "kegg_query", "arguments": "{\"operation\":\"find\"}}"}
      }]
    }
  }],
  "usage": {"prompt_tokens": 42, "completion_tokens": 7, "total_tokens": 49}
}`

const answerResponse = `{
  "id": "chatcmpl-2",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "test-model",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Beaks track diet."}}],
  "usage": {"prompt_tokens": 10, "completion_tokens": 4, "total_tokens": 14}
}`

func newTestProvider(srvURL string) *OpenAIProvider {
	return NewOpenAIProvider(Params{
		APIKey:       "sk-test",
		APIBase:      srvURL + "/v1",
		DefaultModel: "test-model",
		ProviderName: "custom",
		MaxRetries:   1,
	})
}

func TestChat_ParsesToolCalls(t *testing.T) {
	cs := &chatServer{}
	srv := cs.start(t, toolCallResponse)
	p := newTestProvider(srv.URL)

	msgs := schema.NewMessages()
	msgs.AddSystem("be precise")
	msgs.AddUser("Why do finches differ?")
	defs := []map[string]any{{
		"type": "function",
		"function": map[string]any{
			"name":        "search_literature",
			"description": "search papers",
			"parameters":  map[string]any{"type": "object", "properties": map[string]any{"query": map[string]any{"type": "string"}}},
		},
	}}

	resp, err := p.Chat(context.Background(), msgs, defs, schema.NewChatOptions("", 256, 0.1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.HasToolCalls() || len(resp.ToolCalls) != 2 {
		t.Fatalf("expected 2 tool calls, got %+v", resp.ToolCalls)
	}
	first := resp.ToolCalls[0]
	if first.Id != "call_abc" || first.Name != "search_literature" || first.Arguments["query"] != "finch beaks" {
		t.Errorf("unexpected first call %+v", first)
	}
	second := resp.ToolCalls[1]
	if !strings.HasPrefix(second.Id, "call_") || second.Arguments["operation"] != "find" {
		t.Errorf("expected synthetic id and repaired arguments, got %+v", second)
	}
	if resp.Usage.InputTokens != 42 || resp.Usage.OutputTokens != 7 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}
	if resp.ReasoningContent == nil || *resp.ReasoningContent != "look it up" {
		t.Errorf("expected reasoning content, got %v", resp.ReasoningContent)
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.path != "/v1/chat/completions" {
		t.Errorf("unexpected path %q", cs.path)
	}
	if cs.auth != "Bearer sk-test" {
		t.Errorf("unexpected auth header %q", cs.auth)
	}
	if cs.body["model"] != "test-model" {
		t.Errorf("unexpected model %v", cs.body["model"])
	}
	if tools, _ := cs.body["tools"].([]any); len(tools) != 1 {
		t.Errorf("expected one tool in request, got %v", cs.body["tools"])
	}
	if msgs, _ := cs.body["messages"].([]any); len(msgs) != 2 {
		t.Errorf("expected two messages in request, got %v", cs.body["messages"])
	}
}

func TestChat_SendsTranscriptShapes(t *testing.T) {
	cs := &chatServer{}
	srv := cs.start(t, answerResponse)
	p := newTestProvider(srv.URL)

	msgs := schema.NewMessages()
	msgs.AddSystem("sys")
	msgs.AddUser([]schema.ContentBlock{
		{Type: "text", Text: "describe"},
		{Type: "image_url", ImageURL: "https://example.org/cell.png"},
	})
	msgs.AddAssistant(nil, []schema.ToolCall{{ID: "c1", Name: "web_fetch", Arguments: map[string]any{"url": "https://example.org"}}}, nil)
	msgs.AddToolResult("c1", "web_fetch", "page text")

	opts := schema.NewChatOptions("", 0, 0)
	opts.JSONMode = true
	resp, err := p.Chat(context.Background(), msgs, nil, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "Beaks track diet." || resp.FinishReason != "stop" {
		t.Errorf("unexpected response %+v", resp)
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	sent, _ := cs.body["messages"].([]any)
	if len(sent) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(sent))
	}
	user, _ := sent[1].(map[string]any)
	parts, _ := user["content"].([]any)
	if len(parts) != 2 {
		t.Errorf("expected multimodal user content, got %v", user["content"])
	}
	assistant, _ := sent[2].(map[string]any)
	if calls, _ := assistant["tool_calls"].([]any); len(calls) != 1 {
		t.Errorf("expected assistant tool call, got %v", assistant)
	}
	tool, _ := sent[3].(map[string]any)
	if tool["tool_call_id"] != "c1" || tool["role"] != "tool" {
		t.Errorf("unexpected tool message %v", tool)
	}
	format, _ := cs.body["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Errorf("expected json_object response format, got %v", cs.body["response_format"])
	}
	if _, ok := cs.body["tools"]; ok {
		t.Errorf("tools must be omitted when none are offered")
	}
}

func TestChat_HTTPErrorIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL).Chat(context.Background(), schema.NewMessages(), nil, schema.ChatOptions{})
	if err == nil {
		t.Fatal("expected error for 401")
	}
}

func TestResolveModel(t *testing.T) {
	cases := []struct {
		params Params
		model  string
		want   string
	}{
		{Params{ProviderName: "deepseek", DefaultModel: "deepseek/deepseek-chat", APIKey: "k"}, "deepseek/deepseek-chat", "deepseek-chat"},
		{Params{ProviderName: "openrouter", APIKey: "sk-or-x"}, "openrouter/anthropic/claude-sonnet", "anthropic/claude-sonnet"},
		{Params{ProviderName: "aihubmix", APIKey: "k"}, "openai/gpt-4o", "gpt-4o"},
		{Params{ProviderName: "custom", DefaultModel: "my-model", APIKey: "k"}, "my-model", "my-model"},
	}
	for _, c := range cases {
		p := NewOpenAIProvider(c.params)
		if got := p.resolveModel(c.model); got != c.want {
			t.Errorf("resolveModel(%q) with %s = %q, want %q", c.model, c.params.ProviderName, got, c.want)
		}
	}
}

func TestRepairJSON(t *testing.T) {
	for raw, key := range map[string]string{
		`{"query":"x"}`:    "query",
		`{"query":"x"}}`:   "query",
		`{"query":"x"`:     "query",
		`  `:               "",
	} {
		out, err := repairJSON(raw)
		if err != nil {
			t.Errorf("repairJSON(%q): %v", raw, err)
			continue
		}
		if key != "" && out[key] != "x" {
			t.Errorf("repairJSON(%q) = %v", raw, out)
		}
	}
	if _, err := repairJSON("not json"); err == nil {
		t.Error("expected error for garbage")
	}
}

func TestFindByModel(t *testing.T) {
	if s := FindByModel("qwen-max"); s == nil || s.Name != "dashscope" {
		t.Errorf("expected dashscope, got %v", s)
	}
	if s := FindByModel("openrouter/foo"); s != nil {
		t.Errorf("gateways must not match by model, got %s", s.Name)
	}
	if s := FindGateway("", "sk-or-abc", ""); s == nil || s.Name != "openrouter" {
		t.Errorf("expected openrouter gateway by key prefix, got %v", s)
	}
}
