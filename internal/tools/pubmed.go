package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultPubMedBase is the NCBI E-utilities endpoint.
const DefaultPubMedBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// PubMedArticle is one summarised PubMed record.
type PubMedArticle struct {
	PMID    string   `json:"pmid"`
	Title   string   `json:"title"`
	Journal string   `json:"journal"`
	PubDate string   `json:"pub_date"`
	Authors []string `json:"authors"`
	DOI     string   `json:"doi,omitempty"`
	URL     string   `json:"url"`
}

// PubMedTool searches PubMed through esearch + esummary.
type PubMedTool struct {
	baseURL    string
	email      string
	maxResults int
	client     *ResourceClient
}

// NewPubMedTool creates a PubMedTool. An empty baseURL uses DefaultPubMedBase.
func NewPubMedTool(client *ResourceClient, baseURL, email string, maxResults int) *PubMedTool {
	if baseURL == "" {
		baseURL = DefaultPubMedBase
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	return &PubMedTool{baseURL: strings.TrimRight(baseURL, "/"), email: email, maxResults: maxResults, client: client}
}

func (t *PubMedTool) Name() string { return "search_pubmed" }
func (t *PubMedTool) Description() string {
	return "[Layer C] Search PubMed for peer-reviewed biomedical literature. Returns PMIDs, titles, journals, dates and authors."
}
func (t *PubMedTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "PubMed search term, e.g. 'finch beak morphology adaptation'"
			},
			"max_results": {
				"type": "integer",
				"description": "Maximum number of articles (1-20)",
				"minimum": 1,
				"maximum": 20
			}
		},
		"required": ["query"]
	}`)
}
func (t *PubMedTool) OutputSchema() json.RawMessage { return resourceOutputSchema }

func (t *PubMedTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query := stringArg(params, "query")
	n := intArg(params, "max_results", t.maxResults, 1, 20)
	echo := map[string]any{"query": query, "max_results": n}
	if query == "" {
		return errorResponse(echo, errors.New("query is required")), nil
	}

	articles, total, err := t.Search(ctx, query, n)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return errorResponse(echo, err), nil
	}
	echo["total_found"] = total
	return successResponse(echo, articles, len(articles)), nil
}

// Search returns up to n articles for query together with PubMed's total hit count.
func (t *PubMedTool) Search(ctx context.Context, query string, n int) ([]PubMedArticle, int, error) {
	ids, total, err := t.esearch(ctx, query, n)
	if err != nil {
		return nil, 0, fmt.Errorf("pubmed esearch: %w", err)
	}
	if len(ids) == 0 {
		return []PubMedArticle{}, total, nil
	}
	articles, err := t.esummary(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("pubmed esummary: %w", err)
	}
	return articles, total, nil
}

func (t *PubMedTool) esearch(ctx context.Context, query string, n int) ([]string, int, error) {
	v := url.Values{}
	v.Set("db", "pubmed")
	v.Set("term", query)
	v.Set("retmax", strconv.Itoa(n))
	v.Set("retmode", "json")
	v.Set("sort", "relevance")
	if t.email != "" {
		v.Set("email", t.email)
		v.Set("tool", "bioreason")
	}

	var data struct {
		ESearchResult struct {
			Count  string   `json:"count"`
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := t.client.getJSON(ctx, t.baseURL+"/esearch.fcgi?"+v.Encode(), &data); err != nil {
		return nil, 0, err
	}
	total, _ := strconv.Atoi(data.ESearchResult.Count)
	return data.ESearchResult.IDList, total, nil
}

func (t *PubMedTool) esummary(ctx context.Context, ids []string) ([]PubMedArticle, error) {
	v := url.Values{}
	v.Set("db", "pubmed")
	v.Set("id", strings.Join(ids, ","))
	v.Set("retmode", "json")

	var data struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := t.client.getJSON(ctx, t.baseURL+"/esummary.fcgi?"+v.Encode(), &data); err != nil {
		return nil, err
	}

	type summary struct {
		UID         string `json:"uid"`
		Title       string `json:"title"`
		Source      string `json:"source"`
		PubDate     string `json:"pubdate"`
		ELocationID string `json:"elocationid"`
		Authors     []struct {
			Name string `json:"name"`
		} `json:"authors"`
	}

	articles := make([]PubMedArticle, 0, len(ids))
	for _, id := range ids {
		raw, ok := data.Result[id]
		if !ok {
			continue
		}
		var s summary
		if err := jsonAPI.Unmarshal(raw, &s); err != nil {
			continue
		}
		a := PubMedArticle{
			PMID:    id,
			Title:   s.Title,
			Journal: s.Source,
			PubDate: s.PubDate,
			Authors: make([]string, 0, len(s.Authors)),
			URL:     "https://pubmed.ncbi.nlm.nih.gov/" + id + "/",
		}
		for _, au := range s.Authors {
			a.Authors = append(a.Authors, au.Name)
		}
		if doi, ok := strings.CutPrefix(s.ELocationID, "doi: "); ok {
			a.DOI = doi
		}
		articles = append(articles, a)
	}
	return articles, nil
}
