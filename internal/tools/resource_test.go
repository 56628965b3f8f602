package tools

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type wireResponse struct {
	Query   map[string]any  `json:"query"`
	Results json.RawMessage `json:"results"`
	Status  string          `json:"status"`
	Count   int             `json:"count"`
	Error   string          `json:"error"`
}

// decodeResponse parses a tool result and, when results is non-nil, its
// results payload.
func decodeResponse(t *testing.T, out string, results any) wireResponse {
	t.Helper()
	var r wireResponse
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("tool returned invalid JSON %q: %v", out, err)
	}
	if results != nil && len(r.Results) > 0 {
		if err := json.Unmarshal(r.Results, results); err != nil {
			t.Fatalf("decode results %s: %v", r.Results, err)
		}
	}
	return r
}

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func testClient() *ResourceClient { return NewResourceClient(5 * time.Second) }

const esummaryBody = `{"result":{"uids":["111","222"],
	"111":{"uid":"111","title":"Beak shape evolution in Darwin's finches","source":"Nature","pubdate":"2006 Aug","elocationid":"doi: 10.1038/nature05012","authors":[{"name":"Abzhanov A"}]},
	"222":{"uid":"222","title":"Calmodulin and beak length","source":"Science","pubdate":"2004","authors":[]}}}`

func pubmedHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/esearch.fcgi"):
			if r.URL.Query().Get("term") != "finch beak" || r.URL.Query().Get("retmax") != "2" {
				t.Errorf("unexpected esearch query %s", r.URL.RawQuery)
			}
			if r.URL.Query().Get("email") != "lab@example.org" {
				t.Errorf("expected NCBI email to be sent, got %q", r.URL.Query().Get("email"))
			}
			_, _ = io.WriteString(w, `{"esearchresult":{"count":"42","idlist":["111","222"]}}`)
		case strings.HasSuffix(r.URL.Path, "/esummary.fcgi"):
			_, _ = io.WriteString(w, esummaryBody)
		default:
			http.NotFound(w, r)
		}
	}
}

func TestPubMed_Search(t *testing.T) {
	srv := newServer(t, pubmedHandler(t))
	tool := NewPubMedTool(testClient(), srv.URL, "lab@example.org", 5)

	out, err := tool.Execute(context.Background(), map[string]any{"query": "finch beak", "max_results": float64(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var articles []PubMedArticle
	r := decodeResponse(t, out, &articles)
	if r.Status != statusSuccess || r.Count != 2 || r.Query["total_found"] != float64(42) {
		t.Fatalf("unexpected response %s", out)
	}
	if articles[0].PMID != "111" || articles[0].DOI != "10.1038/nature05012" || articles[0].Journal != "Nature" {
		t.Errorf("unexpected first article %+v", articles[0])
	}
	if len(articles[1].Authors) != 0 || articles[1].URL != "https://pubmed.ncbi.nlm.nih.gov/222/" {
		t.Errorf("unexpected second article %+v", articles[1])
	}
}

func TestPubMed_MissingQuery(t *testing.T) {
	tool := NewPubMedTool(testClient(), "http://unused.invalid", "", 0)
	out, err := tool.Execute(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("domain failures must not be Go errors, got %v", err)
	}
	if r := decodeResponse(t, out, nil); r.Status != statusError || r.Error == "" {
		t.Errorf("expected error response, got %s", out)
	}
}

func TestPubMed_HTTPErrorReported(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	out, err := NewPubMedTool(testClient(), srv.URL, "", 3).Execute(context.Background(), map[string]any{"query": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := decodeResponse(t, out, nil)
	if r.Status != statusError || !strings.Contains(r.Error, "HTTP 503") {
		t.Errorf("expected HTTP 503 error response, got %s", out)
	}
}

func TestResource_CancelledContextIsReturned(t *testing.T) {
	srv := newServer(t, pubmedHandler(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPubMedTool(testClient(), srv.URL, "", 3).Execute(ctx, map[string]any{"query": "x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

const biorxivBody = `{"collection":[
	{"title":"Beak morphology and diet in finches","abstract":"We measure beak depth.","doi":"10.1101/1","published":"2024-01-02","authors":"A; B"},
	{"title":"Cell cycle checkpoints","abstract":"Unrelated work on yeast.","doi":"10.1101/2","published":"2024-01-03","authors":"C"},
	{"title":"Finch song","abstract":"Song learning and BEAK gape.","doi":"10.1101/3","published":"2024-01-04","authors":"D"}]}`

func biorxivHandler(t *testing.T, wantPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if wantPath != "" && r.URL.Path != wantPath {
			t.Errorf("unexpected path %s, want %s", r.URL.Path, wantPath)
		}
		_, _ = io.WriteString(w, biorxivBody)
	}
}

func fixedNow() time.Time { return time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC) }

func TestBioRxiv_FiltersByTerms(t *testing.T) {
	srv := newServer(t, biorxivHandler(t, "/details/biorxiv/2024-01-01/2024-03-31/0/json"))
	tool := NewBioRxivTool(testClient(), srv.URL+"/details/biorxiv", 5)
	tool.now = fixedNow

	out, err := tool.Execute(context.Background(), map[string]any{"query": "finch beak"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var preprints []Preprint
	r := decodeResponse(t, out, &preprints)
	if r.Status != statusSuccess || r.Count != 2 {
		t.Fatalf("expected 2 matches, got %s", out)
	}
	if preprints[0].DOI != "10.1101/1" || preprints[1].DOI != "10.1101/3" {
		t.Errorf("unexpected matches %+v", preprints)
	}
	if r.Query["start_date"] != "2024-01-01" {
		t.Errorf("expected a 90-day default window, got %v", r.Query)
	}
}

func TestBioRxiv_InvalidDate(t *testing.T) {
	tool := NewBioRxivTool(testClient(), "http://unused.invalid", 5)
	out, _ := tool.Execute(context.Background(), map[string]any{"query": "x", "start_date": "March 1"})
	if r := decodeResponse(t, out, nil); r.Status != statusError || !strings.Contains(r.Error, "invalid date") {
		t.Errorf("expected invalid date error, got %s", out)
	}
}

func TestLiterature_OneSourceFails(t *testing.T) {
	broken := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	rx := newServer(t, biorxivHandler(t, ""))
	biorxiv := NewBioRxivTool(testClient(), rx.URL, 5)
	biorxiv.now = fixedNow
	tool := NewLiteratureTool(NewPubMedTool(testClient(), broken.URL, "", 5), biorxiv, 5)

	out, err := tool.Execute(context.Background(), map[string]any{"query": "beak"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res literatureResults
	r := decodeResponse(t, out, &res)
	if r.Status != statusSuccess || r.Count != 2 {
		t.Fatalf("expected partial success with 2 preprints, got %s", out)
	}
	if res.SourceErrors["pubmed"] == "" || res.SourceErrors["biorxiv"] != "" {
		t.Errorf("expected only a pubmed source error, got %v", res.SourceErrors)
	}
}

func TestLiterature_BothSourcesFail(t *testing.T) {
	broken := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	tool := NewLiteratureTool(NewPubMedTool(testClient(), broken.URL, "", 5), NewBioRxivTool(testClient(), broken.URL, 5), 5)
	out, err := tool.Execute(context.Background(), map[string]any{"query": "beak"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r := decodeResponse(t, out, nil); r.Status != statusError {
		t.Errorf("expected error response, got %s", out)
	}
}

func TestUniProt_ByAccession(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/uniprotkb/search" || r.URL.Query().Get("query") != "accession:P01308" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"results":[{
			"primaryAccession":"P01308","uniProtkbId":"INS_HUMAN",
			"proteinDescription":{"recommendedName":{"fullName":{"value":"Insulin"}}},
			"genes":[{"geneName":{"value":"INS"}}],
			"organism":{"scientificName":"Homo sapiens"},
			"sequence":{"length":110},
			"comments":[{"commentType":"FUNCTION","texts":[{"value":"Decreases blood glucose."}]}]}]}`)
	})
	out, err := NewUniProtTool(testClient(), srv.URL, 5).Execute(context.Background(), map[string]any{"protein_id": "P01308"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var entries []ProteinEntry
	r := decodeResponse(t, out, &entries)
	if r.Count != 1 {
		t.Fatalf("expected 1 entry, got %s", out)
	}
	e := entries[0]
	if e.Accession != "P01308" || e.Protein != "Insulin" || e.Genes[0] != "INS" || e.Length != 110 || e.Function != "Decreases blood glucose." {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestKEGG_FindAndGet(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/find/pathway/glycolysis":
			_, _ = io.WriteString(w, "path:map00010\tGlycolysis / Gluconeogenesis\npath:map00030\tPentose phosphate pathway\npath:map00040\tExtra\n")
		case "/get/hsa:3630":
			_, _ = io.WriteString(w, "ENTRY       3630\nNAME        INS\n///\n")
		default:
			http.NotFound(w, r)
		}
	})
	tool := NewKEGGTool(testClient(), srv.URL, 2)

	out, _ := tool.Execute(context.Background(), map[string]any{"operation": "find", "query": "glycolysis"})
	var entries []KEGGEntry
	r := decodeResponse(t, out, &entries)
	if r.Status != statusSuccess || len(entries) != 2 {
		t.Fatalf("expected 2 entries capped by max results, got %s", out)
	}
	if entries[0].ID != "path:map00010" || entries[0].Description != "Glycolysis / Gluconeogenesis" {
		t.Errorf("unexpected entry %+v", entries[0])
	}

	out, _ = tool.Execute(context.Background(), map[string]any{"operation": "get", "query": "hsa:3630"})
	var text string
	if r := decodeResponse(t, out, &text); r.Status != statusSuccess || !strings.Contains(text, "NAME        INS") {
		t.Errorf("unexpected get response %s", out)
	}

	out, _ = tool.Execute(context.Background(), map[string]any{"operation": "find", "database": "proteins", "query": "x"})
	if r := decodeResponse(t, out, nil); r.Status != statusError {
		t.Errorf("expected unsupported database error, got %s", out)
	}
	out, _ = tool.Execute(context.Background(), map[string]any{"operation": "list", "query": "x"})
	if r := decodeResponse(t, out, nil); r.Status != statusError {
		t.Errorf("expected unknown operation error, got %s", out)
	}
}

func TestOpenTargets_GraphQL(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Variables["q"] != "BRCA1" || !strings.Contains(req.Query, "search") {
			t.Errorf("unexpected GraphQL request %+v", req)
		}
		_, _ = io.WriteString(w, `{"data":{"search":{"total":7,"hits":[{"id":"ENSG00000012048","entity":"target","name":"BRCA1"}]}}}`)
	})
	out, err := NewOpenTargetsTool(testClient(), srv.URL, 5).Execute(context.Background(), map[string]any{"query": "BRCA1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var hits []TargetHit
	r := decodeResponse(t, out, &hits)
	if r.Count != 1 || hits[0].ID != "ENSG00000012048" || r.Query["total_found"] != float64(7) {
		t.Errorf("unexpected response %s", out)
	}
}

func TestOpenTargets_GraphQLErrorReported(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"errors":[{"message":"syntax error"}]}`)
	})
	out, _ := NewOpenTargetsTool(testClient(), srv.URL, 5).Execute(context.Background(), map[string]any{"query": "x"})
	if r := decodeResponse(t, out, nil); r.Status != statusError || !strings.Contains(r.Error, "syntax error") {
		t.Errorf("expected GraphQL error, got %s", out)
	}
}

func TestWebSearch(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Subscription-Token") != "brave-key" {
			t.Errorf("missing subscription token")
		}
		_, _ = io.WriteString(w, `{"web":{"results":[{"title":"Finch","url":"https://a.example"},{"title":"Beak","url":"https://b.example"}]}}`)
	})
	out, _ := NewWebSearchTool(testClient(), "brave-key", srv.URL, 1).Execute(context.Background(), map[string]any{"query": "finch"})
	var hits []SearchHit
	if r := decodeResponse(t, out, &hits); r.Status != statusSuccess || len(hits) != 1 || hits[0].Title != "Finch" {
		t.Errorf("expected one capped hit, got %s", out)
	}

	out, _ = NewWebSearchTool(testClient(), "", srv.URL, 1).Execute(context.Background(), map[string]any{"query": "finch"})
	if r := decodeResponse(t, out, nil); r.Status != statusError {
		t.Errorf("expected missing key error, got %s", out)
	}
}

func TestWebFetch(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"gene":"INS"}`)
		case "/article":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, `<!doctype html><html><head><title>Finch beaks</title><script>var x=1;</script></head>
<body><article><h1>Finch beaks</h1><p>Ground finches with deeper beaks crack larger seeds, and beak depth tracks the seed sizes available after droughts on Daphne Major.</p>
<p>Bmp4 expression in the developing beak correlates with beak depth across species of Geospiza.</p></article></body></html>`)
		default:
			_, _ = io.WriteString(w, strings.Repeat("x", 500))
		}
	})
	tool := NewWebFetchTool(0, 5*time.Second)

	out, _ := tool.Execute(context.Background(), map[string]any{"url": srv.URL + "/data.json"})
	var page FetchedPage
	if r := decodeResponse(t, out, &page); r.Status != statusSuccess || page.Extractor != "json" || !strings.Contains(page.Text, `"gene": "INS"`) {
		t.Errorf("unexpected json fetch %s", out)
	}

	out, _ = tool.Execute(context.Background(), map[string]any{"url": srv.URL + "/article", "extract_mode": "text"})
	page = FetchedPage{}
	decodeResponse(t, out, &page)
	if page.Extractor != "readability" || !strings.Contains(page.Text, "crack larger seeds") || strings.Contains(page.Text, "var x") {
		t.Errorf("unexpected html fetch %+v", page)
	}

	out, _ = tool.Execute(context.Background(), map[string]any{"url": srv.URL + "/raw", "max_chars": float64(100)})
	page = FetchedPage{}
	decodeResponse(t, out, &page)
	if page.Extractor != "raw" || len(page.Text) != 100 || !page.Truncated {
		t.Errorf("expected truncated raw text, got %+v", page)
	}

	out, _ = tool.Execute(context.Background(), map[string]any{"url": "ftp://example.org/file"})
	if r := decodeResponse(t, out, nil); r.Status != statusError {
		t.Errorf("expected URL validation error, got %s", out)
	}
}

func TestIntArg_Clamps(t *testing.T) {
	p := map[string]any{"big": float64(99), "small": 0, "bad": "7"}
	if got := intArg(p, "big", 5, 1, 20); got != 20 {
		t.Errorf("expected 20, got %d", got)
	}
	if got := intArg(p, "small", 5, 1, 20); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := intArg(p, "bad", 5, 1, 20); got != 5 {
		t.Errorf("expected default 5, got %d", got)
	}
	if got := stringsArg(map[string]any{"u": []any{" a ", 3, ""}}, "u"); len(got) != 1 || got[0] != "a" {
		t.Errorf("unexpected stringsArg %v", got)
	}
}
