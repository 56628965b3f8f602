package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

const (
	webUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7_2) AppleWebKit/537.36"
	maxRedirects = 5
)

// validateURL checks that url is http(s) with a valid domain.
func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("only http/https allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing domain in URL")
	}
	return nil
}

// ---------------------------------------------------------------------------
// WebSearchTool
// ---------------------------------------------------------------------------

// DefaultBraveSearchURL is the Brave Search web endpoint.
const DefaultBraveSearchURL = "https://api.search.brave.com/res/v1/web/search"

// SearchHit is one web search result.
type SearchHit struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// WebSearchTool searches the web using the Brave Search API.
type WebSearchTool struct {
	apiKey     string
	endpoint   string
	maxResults int
	client     *ResourceClient
}

// NewWebSearchTool creates a WebSearchTool. maxResults defaults to 5.
func NewWebSearchTool(client *ResourceClient, apiKey, endpoint string, maxResults int) *WebSearchTool {
	if maxResults <= 0 {
		maxResults = 5
	}
	if endpoint == "" {
		endpoint = DefaultBraveSearchURL
	}
	return &WebSearchTool{apiKey: apiKey, endpoint: endpoint, maxResults: maxResults, client: client}
}

func (t *WebSearchTool) Name() string { return "web_search" }
func (t *WebSearchTool) Description() string {
	return "[Layer C] Search the web. Returns titles, URLs, and snippets."
}
func (t *WebSearchTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Search query"
			},
			"count": {
				"type": "integer",
				"description": "Results (1-10)",
				"minimum": 1,
				"maximum": 10
			}
		},
		"required": ["query"]
	}`)
}
func (t *WebSearchTool) OutputSchema() json.RawMessage { return resourceOutputSchema }

func (t *WebSearchTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query := stringArg(params, "query")
	n := intArg(params, "count", t.maxResults, 1, 10)
	echo := map[string]any{"query": query, "count": n}
	if t.apiKey == "" {
		return errorResponse(echo, errors.New("web search API key not configured")), nil
	}
	if query == "" {
		return errorResponse(echo, errors.New("query is required")), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint, nil)
	if err != nil {
		return errorResponse(echo, err), nil
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("count", strconv.Itoa(n))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("X-Subscription-Token", t.apiKey)

	body, err := t.client.do(req, "application/json")
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return errorResponse(echo, err), nil
	}

	var data struct {
		Web struct {
			Results []SearchHit `json:"results"`
		} `json:"web"`
	}
	if err := jsonAPI.Unmarshal(body, &data); err != nil {
		return errorResponse(echo, fmt.Errorf("parse response: %w", err)), nil
	}

	hits := data.Web.Results
	if len(hits) > n {
		hits = hits[:n]
	}
	if hits == nil {
		hits = []SearchHit{}
	}
	return successResponse(echo, hits, len(hits)), nil
}

// ---------------------------------------------------------------------------
// WebFetchTool
// ---------------------------------------------------------------------------

// FetchedPage is the readable content of one fetched URL.
type FetchedPage struct {
	URL       string `json:"url"`
	FinalURL  string `json:"final_url"`
	Title     string `json:"title,omitempty"`
	Extractor string `json:"extractor"`
	Truncated bool   `json:"truncated"`
	Text      string `json:"text"`
}

// WebFetchTool fetches a URL and extracts readable content.
type WebFetchTool struct {
	maxChars   int
	httpClient *http.Client
}

// NewWebFetchTool creates a WebFetchTool. maxChars defaults to 50000.
func NewWebFetchTool(maxChars int, timeout time.Duration) *WebFetchTool {
	if maxChars <= 0 {
		maxChars = 50000
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
	return &WebFetchTool{maxChars: maxChars, httpClient: client}
}

func (t *WebFetchTool) Name() string { return "web_fetch" }
func (t *WebFetchTool) Description() string {
	return "[Layer C] Fetch a web page or article (e.g. a paper's landing page) and extract its readable text."
}
func (t *WebFetchTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"url": {
				"type": "string",
				"description": "URL to fetch"
			},
			"extract_mode": {
				"type": "string",
				"enum": ["markdown", "text"],
				"default": "markdown"
			},
			"max_chars": {
				"type": "integer",
				"minimum": 100
			}
		},
		"required": ["url"]
	}`)
}
func (t *WebFetchTool) OutputSchema() json.RawMessage { return resourceOutputSchema }

func (t *WebFetchTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	rawURL := stringArg(params, "url")
	extractMode := stringArg(params, "extract_mode")
	if extractMode == "" {
		extractMode = "markdown"
	}
	maxChars := intArg(params, "max_chars", t.maxChars, 100, 1_000_000)
	echo := map[string]any{"url": rawURL, "extract_mode": extractMode, "max_chars": maxChars}

	if err := validateURL(rawURL); err != nil {
		return errorResponse(echo, fmt.Errorf("URL validation failed: %w", err)), nil
	}

	page, err := t.fetch(ctx, rawURL, extractMode, maxChars)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return errorResponse(echo, err), nil
	}
	return successResponse(echo, page, 1), nil
}

func (t *WebFetchTool) fetch(ctx context.Context, rawURL, extractMode string, maxChars int) (FetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return FetchedPage{}, err
	}
	req.Header.Set("User-Agent", webUserAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return FetchedPage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return FetchedPage{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return FetchedPage{}, err
	}

	page := FetchedPage{URL: rawURL, FinalURL: resp.Request.URL.String()}
	ctype := resp.Header.Get("Content-Type")

	switch {
	case strings.Contains(ctype, "application/json"):
		var buf bytes.Buffer
		if json.Indent(&buf, body, "", "  ") == nil {
			page.Text = buf.String()
		} else {
			page.Text = string(body)
		}
		page.Extractor = "json"

	case strings.Contains(ctype, "text/html") || isHTMLPrefix(body):
		parsedURL, _ := url.Parse(page.FinalURL)
		article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
		if err == nil {
			page.Title = article.Title
			if extractMode == "markdown" {
				page.Text = htmlToMarkdown(article.Content)
			} else {
				page.Text = strings.TrimSpace(article.TextContent)
			}
		} else {
			page.Text = stripHTMLTags(string(body))
		}
		page.Extractor = "readability"

	default:
		page.Text = string(body)
		page.Extractor = "raw"
	}

	if len(page.Text) > maxChars {
		page.Text = page.Text[:maxChars]
		page.Truncated = true
	}
	return page, nil
}

// isHTMLPrefix returns true if the body starts with an HTML declaration.
func isHTMLPrefix(b []byte) bool {
	prefix := strings.ToLower(strings.TrimSpace(string(b[:min(256, len(b))])))
	return strings.HasPrefix(prefix, "<!doctype") || strings.HasPrefix(prefix, "<html")
}

// ---------------------------------------------------------------------------
// HTML → text/markdown helpers
// ---------------------------------------------------------------------------

var (
	reScript    = regexp.MustCompile(`(?is)<script[\s\S]*?</script>`)
	reStyle     = regexp.MustCompile(`(?is)<style[\s\S]*?</style>`)
	reTags      = regexp.MustCompile(`<[^>]+>`)
	reSpaces    = regexp.MustCompile(`[ \t]+`)
	reNewlines  = regexp.MustCompile(`\n{3,}`)
	reLinks     = regexp.MustCompile(`(?is)<a\s+[^>]*href=["']([^"']+)["'][^>]*>([\s\S]*?)</a>`)
	reHeadings  = regexp.MustCompile(`(?is)<h([1-6])[^>]*>([\s\S]*?)</h[1-6]>`)
	reListItems = regexp.MustCompile(`(?is)<li[^>]*>([\s\S]*?)</li>`)
	reBlockEnd  = regexp.MustCompile(`(?is)</(p|div|section|article)>`)
	reLineBreak = regexp.MustCompile(`(?is)<(br|hr)\s*/?>`)
)

// stripHTMLTags removes all HTML tags and normalizes whitespace.
func stripHTMLTags(text string) string {
	text = reScript.ReplaceAllString(text, "")
	text = reStyle.ReplaceAllString(text, "")
	text = reTags.ReplaceAllString(text, "")
	return normalizeWhitespace(text)
}

// htmlToMarkdown converts HTML to a simple markdown representation.
func htmlToMarkdown(htmlText string) string {
	text := reLinks.ReplaceAllStringFunc(htmlText, func(m string) string {
		parts := reLinks.FindStringSubmatch(m)
		if len(parts) < 3 {
			return m
		}
		return fmt.Sprintf("[%s](%s)", stripHTMLTags(parts[2]), parts[1])
	})
	text = reHeadings.ReplaceAllStringFunc(text, func(m string) string {
		parts := reHeadings.FindStringSubmatch(m)
		if len(parts) < 3 {
			return m
		}
		level, _ := strconv.Atoi(parts[1])
		return fmt.Sprintf("\n%s %s\n", strings.Repeat("#", level), stripHTMLTags(parts[2]))
	})
	text = reListItems.ReplaceAllStringFunc(text, func(m string) string {
		parts := reListItems.FindStringSubmatch(m)
		if len(parts) < 2 {
			return m
		}
		return "\n- " + stripHTMLTags(parts[1])
	})
	text = reBlockEnd.ReplaceAllString(text, "\n\n")
	text = reLineBreak.ReplaceAllString(text, "\n")
	return normalizeWhitespace(stripHTMLTags(text))
}

func normalizeWhitespace(text string) string {
	text = reSpaces.ReplaceAllString(text, " ")
	text = reNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
