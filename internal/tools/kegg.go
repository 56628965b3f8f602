package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultKEGGBase is the KEGG REST endpoint.
const DefaultKEGGBase = "https://rest.kegg.jp"

var keggDatabases = map[string]bool{
	"pathway": true, "module": true, "ko": true, "genes": true, "genome": true,
	"compound": true, "glycan": true, "reaction": true, "enzyme": true,
	"disease": true, "drug": true, "network": true,
}

// KEGGEntry is one line of a KEGG find result.
type KEGGEntry struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// KEGGTool queries pathways, compounds and genes in KEGG.
type KEGGTool struct {
	baseURL    string
	maxResults int
	client     *ResourceClient
}

// NewKEGGTool creates a KEGGTool. An empty baseURL uses DefaultKEGGBase.
func NewKEGGTool(client *ResourceClient, baseURL string, maxResults int) *KEGGTool {
	if baseURL == "" {
		baseURL = DefaultKEGGBase
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	return &KEGGTool{baseURL: strings.TrimRight(baseURL, "/"), maxResults: maxResults, client: client}
}

func (t *KEGGTool) Name() string { return "kegg_query" }
func (t *KEGGTool) Description() string {
	return "[Layer C] Query KEGG. 'find' searches a database (pathway, compound, genes, ko, ...) by keyword; 'get' returns a full entry such as map00010 or hsa:3098."
}
func (t *KEGGTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"operation": {
				"type": "string",
				"enum": ["find", "get"]
			},
			"database": {
				"type": "string",
				"description": "KEGG database for 'find', e.g. pathway, compound, genes"
			},
			"query": {
				"type": "string",
				"description": "Keyword for 'find' or entry id for 'get'"
			}
		},
		"required": ["operation", "query"]
	}`)
}
func (t *KEGGTool) OutputSchema() json.RawMessage { return resourceOutputSchema }

func (t *KEGGTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	op := stringArg(params, "operation")
	db := strings.ToLower(stringArg(params, "database"))
	query := stringArg(params, "query")
	echo := map[string]any{"operation": op, "database": db, "query": query}
	if query == "" {
		return errorResponse(echo, errors.New("query is required")), nil
	}

	switch op {
	case "find":
		if db == "" {
			db = "pathway"
			echo["database"] = db
		}
		if !keggDatabases[db] {
			return errorResponse(echo, fmt.Errorf("unsupported KEGG database %q", db)), nil
		}
		entries, err := t.Find(ctx, db, query)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return errorResponse(echo, err), nil
		}
		return successResponse(echo, entries, len(entries)), nil
	case "get":
		entry, err := t.Get(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return errorResponse(echo, err), nil
		}
		return successResponse(echo, entry, 1), nil
	default:
		return errorResponse(echo, fmt.Errorf("unknown operation %q", op)), nil
	}
}

// Find searches db for query and returns at most maxResults entries.
func (t *KEGGTool) Find(ctx context.Context, db, query string) ([]KEGGEntry, error) {
	body, err := t.client.get(ctx, fmt.Sprintf("%s/find/%s/%s", t.baseURL, db, url.PathEscape(query)), "text/plain")
	if err != nil {
		return nil, fmt.Errorf("kegg find: %w", err)
	}
	entries := make([]KEGGEntry, 0)
	for _, line := range strings.Split(strings.TrimSpace(string(body)), "\n") {
		if line == "" {
			continue
		}
		id, desc, _ := strings.Cut(line, "\t")
		entries = append(entries, KEGGEntry{ID: id, Description: strings.TrimSpace(desc)})
		if len(entries) >= t.maxResults {
			break
		}
	}
	return entries, nil
}

// Get returns the flat-file text of one KEGG entry, trimmed to 8000 chars.
func (t *KEGGTool) Get(ctx context.Context, id string) (string, error) {
	body, err := t.client.get(ctx, fmt.Sprintf("%s/get/%s", t.baseURL, url.PathEscape(id)), "text/plain")
	if err != nil {
		return "", fmt.Errorf("kegg get: %w", err)
	}
	text := string(body)
	if len(text) > 8000 {
		text = text[:8000] + "\n..."
	}
	return text, nil
}
