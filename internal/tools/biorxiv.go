package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultBioRxivBase is the bioRxiv details API endpoint.
const DefaultBioRxivBase = "https://api.biorxiv.org/details/biorxiv"

const bioRxivDateLayout = "2006-01-02"

// Preprint is one bioRxiv record.
type Preprint struct {
	Title     string `json:"title"`
	Abstract  string `json:"abstract"`
	DOI       string `json:"doi"`
	Published string `json:"published"`
	Authors   string `json:"authors"`
	Category  string `json:"category,omitempty"`
}

// BioRxivTool lists bioRxiv preprints in a date window and keeps those whose
// title or abstract mention the query terms.
type BioRxivTool struct {
	baseURL    string
	maxResults int
	client     *ResourceClient
	now        func() time.Time
}

// NewBioRxivTool creates a BioRxivTool. An empty baseURL uses DefaultBioRxivBase.
func NewBioRxivTool(client *ResourceClient, baseURL string, maxResults int) *BioRxivTool {
	if baseURL == "" {
		baseURL = DefaultBioRxivBase
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	return &BioRxivTool{baseURL: strings.TrimRight(baseURL, "/"), maxResults: maxResults, client: client, now: time.Now}
}

func (t *BioRxivTool) Name() string { return "search_biorxiv" }
func (t *BioRxivTool) Description() string {
	return "[Layer C] Search recent bioRxiv preprints. Filters a date window (default: last 90 days) by query terms in title or abstract."
}
func (t *BioRxivTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Terms that must appear in the title or abstract"
			},
			"start_date": {
				"type": "string",
				"description": "Window start, YYYY-MM-DD"
			},
			"end_date": {
				"type": "string",
				"description": "Window end, YYYY-MM-DD"
			},
			"limit": {
				"type": "integer",
				"description": "Maximum number of preprints (1-20)",
				"minimum": 1,
				"maximum": 20
			}
		},
		"required": ["query"]
	}`)
}
func (t *BioRxivTool) OutputSchema() json.RawMessage { return resourceOutputSchema }

func (t *BioRxivTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query := stringArg(params, "query")
	limit := intArg(params, "limit", t.maxResults, 1, 20)
	end := stringArg(params, "end_date")
	start := stringArg(params, "start_date")
	if end == "" {
		end = t.now().Format(bioRxivDateLayout)
	}
	if start == "" {
		endT, err := time.Parse(bioRxivDateLayout, end)
		if err != nil {
			endT = t.now()
		}
		start = endT.AddDate(0, 0, -90).Format(bioRxivDateLayout)
	}
	echo := map[string]any{"query": query, "start_date": start, "end_date": end, "limit": limit}
	if query == "" {
		return errorResponse(echo, errors.New("query is required")), nil
	}
	for _, d := range []string{start, end} {
		if _, err := time.Parse(bioRxivDateLayout, d); err != nil {
			return errorResponse(echo, fmt.Errorf("invalid date %q, want YYYY-MM-DD", d)), nil
		}
	}

	preprints, err := t.Search(ctx, query, start, end, limit)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return errorResponse(echo, err), nil
	}
	return successResponse(echo, preprints, len(preprints)), nil
}

// Search scans the first page of the window and returns up to limit matches.
func (t *BioRxivTool) Search(ctx context.Context, query, start, end string, limit int) ([]Preprint, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/%d/json", t.baseURL, start, end, 0)

	var data struct {
		Collection []Preprint `json:"collection"`
	}
	if err := t.client.getJSON(ctx, endpoint, &data); err != nil {
		return nil, fmt.Errorf("biorxiv: %w", err)
	}

	terms := strings.Fields(strings.ToLower(query))
	out := make([]Preprint, 0, limit)
	for _, p := range data.Collection {
		if len(out) >= limit {
			break
		}
		if matchesAll(strings.ToLower(p.Title+" "+p.Abstract), terms) {
			out = append(out, p)
		}
	}
	return out, nil
}

func matchesAll(text string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}
