package tools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// LiteratureTool searches PubMed and bioRxiv concurrently.
type LiteratureTool struct {
	pubmed     *PubMedTool
	biorxiv    *BioRxivTool
	maxResults int
}

// NewLiteratureTool combines the two literature sources.
func NewLiteratureTool(pubmed *PubMedTool, biorxiv *BioRxivTool, maxResults int) *LiteratureTool {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &LiteratureTool{pubmed: pubmed, biorxiv: biorxiv, maxResults: maxResults}
}

func (t *LiteratureTool) Name() string { return "search_literature" }
func (t *LiteratureTool) Description() string {
	return "[Layer C] Search the scientific literature: peer-reviewed articles (PubMed) and recent preprints (bioRxiv) in one call."
}
func (t *LiteratureTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Literature search query"
			},
			"max_results": {
				"type": "integer",
				"description": "Maximum results per source (1-20)",
				"minimum": 1,
				"maximum": 20
			}
		},
		"required": ["query"]
	}`)
}
func (t *LiteratureTool) OutputSchema() json.RawMessage { return resourceOutputSchema }

type literatureResults struct {
	Articles     []PubMedArticle   `json:"articles"`
	Preprints    []Preprint        `json:"preprints"`
	SourceErrors map[string]string `json:"source_errors,omitempty"`
}

func (t *LiteratureTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query := stringArg(params, "query")
	n := intArg(params, "max_results", t.maxResults, 1, 20)
	echo := map[string]any{"query": query, "max_results": n}
	if query == "" {
		return errorResponse(echo, errors.New("query is required")), nil
	}

	var (
		res                   = literatureResults{Articles: []PubMedArticle{}, Preprints: []Preprint{}}
		pubmedErr, biorxivErr error
	)

	// Source failures are recorded rather than returned so one outage does
	// not cancel the other search.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		articles, _, err := t.pubmed.Search(gctx, query, n)
		if err != nil {
			pubmedErr = err
			return nil
		}
		res.Articles = articles
		return nil
	})
	g.Go(func() error {
		end := t.biorxiv.now()
		start := end.AddDate(0, 0, -90)
		preprints, err := t.biorxiv.Search(gctx, query, start.Format(bioRxivDateLayout), end.Format(bioRxivDateLayout), n)
		if err != nil {
			biorxivErr = err
			return nil
		}
		res.Preprints = preprints
		return nil
	})
	_ = g.Wait()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if pubmedErr != nil && biorxivErr != nil {
		return errorResponse(echo, errors.Join(pubmedErr, biorxivErr)), nil
	}
	if pubmedErr != nil || biorxivErr != nil {
		res.SourceErrors = map[string]string{}
		if pubmedErr != nil {
			res.SourceErrors["pubmed"] = pubmedErr.Error()
		}
		if biorxivErr != nil {
			res.SourceErrors["biorxiv"] = biorxivErr.Error()
		}
		slog.Warn("Literature source failed", "query", query, "errors", res.SourceErrors)
	}
	return successResponse(echo, res, len(res.Articles)+len(res.Preprints)), nil
}
