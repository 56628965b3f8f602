package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// jsonAPI decodes external resource payloads.
var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	statusSuccess = "success"
	statusError   = "error"

	resourceUserAgent = "bioreason/0.1 (+https://github.com/bioreason/bioreason)"
	maxResponseBytes  = 4 << 20
)

// ResourceResponse is the result envelope every external-resource tool
// returns to the model.
type ResourceResponse struct {
	Query   map[string]any `json:"query"`
	Results any            `json:"results"`
	Status  string         `json:"status"`
	Count   int            `json:"count"`
	Error   string         `json:"error,omitempty"`
}

// resourceOutputSchema documents ResourceResponse for descriptors.
var resourceOutputSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"query": {"type": "object"},
		"results": {},
		"status": {"type": "string", "enum": ["success", "error"]},
		"count": {"type": "integer"},
		"error": {"type": "string"}
	},
	"required": ["query", "results", "status", "count"]
}`)

func successResponse(query map[string]any, results any, count int) string {
	return encodeResponse(ResourceResponse{Query: query, Results: results, Status: statusSuccess, Count: count})
}

func errorResponse(query map[string]any, err error) string {
	return encodeResponse(ResourceResponse{Query: query, Results: []any{}, Status: statusError, Error: err.Error()})
}

func encodeResponse(r ResourceResponse) string {
	if r.Query == nil {
		r.Query = map[string]any{}
	}
	b, err := jsonAPI.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"status":"error","error":%q}`, err.Error())
	}
	return string(b)
}

// ResourceClient performs HTTP GET/POST calls against external resources.
type ResourceClient struct {
	httpClient *http.Client
}

// NewResourceClient returns a client with the given per-request timeout
// (defaults to 30s).
func NewResourceClient(timeout time.Duration) *ResourceClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ResourceClient{httpClient: &http.Client{Timeout: timeout}}
}

// getJSON fetches rawURL and decodes the JSON body into out.
func (c *ResourceClient) getJSON(ctx context.Context, rawURL string, out any) error {
	body, err := c.get(ctx, rawURL, "application/json")
	if err != nil {
		return err
	}
	if err := jsonAPI.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// postJSON sends payload as JSON to rawURL and decodes the JSON body into out.
func (c *ResourceClient) postJSON(ctx context.Context, rawURL string, payload, out any) error {
	data, err := jsonAPI.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	body, err := c.do(req, "application/json")
	if err != nil {
		return err
	}
	if err := jsonAPI.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *ResourceClient) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req, accept)
}

func (c *ResourceClient) do(req *http.Request, accept string) ([]byte, error) {
	req.Header.Set("User-Agent", resourceUserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	qc := QueryCtx(req.Context())
	slog.Debug("Resource request", "method", req.Method, "url", req.URL.Redacted(), "session", qc.SessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s returned HTTP %d", req.URL.Host, resp.StatusCode)
	}
	return body, nil
}

// stringArg returns params[key] as a trimmed string.
func stringArg(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return strings.TrimSpace(s)
}

// intArg returns params[key] as an int clamped to [lo, hi], or def when absent.
func intArg(params map[string]any, key string, def, lo, hi int) int {
	n := def
	switch v := params[key].(type) {
	case float64:
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(v)
	}
	if n < lo {
		n = lo
	}
	if n > hi {
		n = hi
	}
	return n
}

// stringsArg returns params[key] as a string slice, accepting a single string too.
func stringsArg(params map[string]any, key string) []string {
	switch v := params[key].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}
