package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultOpenTargetsURL is the Open Targets Platform GraphQL endpoint.
const DefaultOpenTargetsURL = "https://api.platform.opentargets.org/api/v4/graphql"

const openTargetsSearchQuery = `query search($q: String!, $size: Int!) {
  search(queryString: $q, page: {index: 0, size: $size}) {
    total
    hits { id entity name description }
  }
}`

// TargetHit is one Open Targets search hit (target, disease or drug).
type TargetHit struct {
	ID          string `json:"id"`
	Entity      string `json:"entity"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// OpenTargetsTool searches targets, diseases and drugs on the Open Targets Platform.
type OpenTargetsTool struct {
	endpoint   string
	maxResults int
	client     *ResourceClient
}

// NewOpenTargetsTool creates an OpenTargetsTool. An empty endpoint uses DefaultOpenTargetsURL.
func NewOpenTargetsTool(client *ResourceClient, endpoint string, maxResults int) *OpenTargetsTool {
	if endpoint == "" {
		endpoint = DefaultOpenTargetsURL
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	return &OpenTargetsTool{endpoint: endpoint, maxResults: maxResults, client: client}
}

func (t *OpenTargetsTool) Name() string { return "opentargets_search" }
func (t *OpenTargetsTool) Description() string {
	return "[Layer C] Search the Open Targets Platform for drug targets, diseases and drugs and their identifiers."
}
func (t *OpenTargetsTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Gene symbol, disease or drug name, e.g. 'BRCA1' or 'asthma'"
			},
			"max_results": {
				"type": "integer",
				"minimum": 1,
				"maximum": 25
			}
		},
		"required": ["query"]
	}`)
}
func (t *OpenTargetsTool) OutputSchema() json.RawMessage { return resourceOutputSchema }

func (t *OpenTargetsTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query := stringArg(params, "query")
	n := intArg(params, "max_results", t.maxResults, 1, 25)
	echo := map[string]any{"query": query, "max_results": n}
	if query == "" {
		return errorResponse(echo, errors.New("query is required")), nil
	}

	hits, total, err := t.Search(ctx, query, n)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return errorResponse(echo, err), nil
	}
	echo["total_found"] = total
	return successResponse(echo, hits, len(hits)), nil
}

// Search runs the GraphQL search query.
func (t *OpenTargetsTool) Search(ctx context.Context, query string, n int) ([]TargetHit, int, error) {
	payload := map[string]any{
		"query":     openTargetsSearchQuery,
		"variables": map[string]any{"q": query, "size": n},
	}
	var data struct {
		Data struct {
			Search struct {
				Total int         `json:"total"`
				Hits  []TargetHit `json:"hits"`
			} `json:"search"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := t.client.postJSON(ctx, t.endpoint, payload, &data); err != nil {
		return nil, 0, fmt.Errorf("opentargets: %w", err)
	}
	if len(data.Errors) > 0 {
		return nil, 0, fmt.Errorf("opentargets: %s", data.Errors[0].Message)
	}
	hits := data.Data.Search.Hits
	if hits == nil {
		hits = []TargetHit{}
	}
	return hits, data.Data.Search.Total, nil
}
