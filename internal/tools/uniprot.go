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

// DefaultUniProtBase is the UniProt REST endpoint.
const DefaultUniProtBase = "https://rest.uniprot.org"

// ProteinEntry is a condensed UniProtKB record.
type ProteinEntry struct {
	Accession string   `json:"accession"`
	EntryName string   `json:"entry_name"`
	Protein   string   `json:"protein"`
	Genes     []string `json:"genes"`
	Organism  string   `json:"organism"`
	Length    int      `json:"length"`
	Function  string   `json:"function,omitempty"`
}

// UniProtTool searches UniProtKB for protein entries.
type UniProtTool struct {
	baseURL    string
	maxResults int
	client     *ResourceClient
}

// NewUniProtTool creates a UniProtTool. An empty baseURL uses DefaultUniProtBase.
func NewUniProtTool(client *ResourceClient, baseURL string, maxResults int) *UniProtTool {
	if baseURL == "" {
		baseURL = DefaultUniProtBase
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	return &UniProtTool{baseURL: strings.TrimRight(baseURL, "/"), maxResults: maxResults, client: client}
}

func (t *UniProtTool) Name() string { return "uniprot_search" }
func (t *UniProtTool) Description() string {
	return "[Layer C] Look up proteins in UniProtKB by free-text query or accession. Returns names, genes, organism, length and function."
}
func (t *UniProtTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "UniProt query, e.g. 'hemoglobin AND organism_id:9606'"
			},
			"protein_id": {
				"type": "string",
				"description": "UniProt accession, e.g. P69905 (takes precedence over query)"
			},
			"max_results": {
				"type": "integer",
				"minimum": 1,
				"maximum": 25
			}
		}
	}`)
}
func (t *UniProtTool) OutputSchema() json.RawMessage { return resourceOutputSchema }

func (t *UniProtTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query := stringArg(params, "query")
	accession := stringArg(params, "protein_id")
	n := intArg(params, "max_results", t.maxResults, 1, 25)
	echo := map[string]any{"query": query, "protein_id": accession, "max_results": n}

	if accession != "" {
		query = "accession:" + accession
	}
	if query == "" {
		return errorResponse(echo, errors.New("query or protein_id is required")), nil
	}

	entries, err := t.Search(ctx, query, n)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return errorResponse(echo, err), nil
	}
	return successResponse(echo, entries, len(entries)), nil
}

type uniProtValue struct {
	Value string `json:"value"`
}

// Search runs a UniProtKB search and returns up to n entries.
func (t *UniProtTool) Search(ctx context.Context, query string, n int) ([]ProteinEntry, error) {
	v := url.Values{}
	v.Set("query", query)
	v.Set("format", "json")
	v.Set("size", strconv.Itoa(n))
	v.Set("fields", "accession,id,protein_name,gene_names,organism_name,length,cc_function")

	var data struct {
		Results []struct {
			PrimaryAccession   string `json:"primaryAccession"`
			UniProtKBID        string `json:"uniProtkbId"`
			ProteinDescription struct {
				RecommendedName struct {
					FullName uniProtValue `json:"fullName"`
				} `json:"recommendedName"`
			} `json:"proteinDescription"`
			Genes []struct {
				GeneName uniProtValue `json:"geneName"`
			} `json:"genes"`
			Organism struct {
				ScientificName string `json:"scientificName"`
			} `json:"organism"`
			Sequence struct {
				Length int `json:"length"`
			} `json:"sequence"`
			Comments []struct {
				CommentType string         `json:"commentType"`
				Texts       []uniProtValue `json:"texts"`
			} `json:"comments"`
		} `json:"results"`
	}
	if err := t.client.getJSON(ctx, t.baseURL+"/uniprotkb/search?"+v.Encode(), &data); err != nil {
		return nil, fmt.Errorf("uniprot: %w", err)
	}

	entries := make([]ProteinEntry, 0, len(data.Results))
	for _, r := range data.Results {
		e := ProteinEntry{
			Accession: r.PrimaryAccession,
			EntryName: r.UniProtKBID,
			Protein:   r.ProteinDescription.RecommendedName.FullName.Value,
			Organism:  r.Organism.ScientificName,
			Length:    r.Sequence.Length,
			Genes:     make([]string, 0, len(r.Genes)),
		}
		for _, g := range r.Genes {
			if g.GeneName.Value != "" {
				e.Genes = append(e.Genes, g.GeneName.Value)
			}
		}
		for _, c := range r.Comments {
			if c.CommentType == "FUNCTION" && len(c.Texts) > 0 {
				e.Function = c.Texts[0].Value
				break
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}
