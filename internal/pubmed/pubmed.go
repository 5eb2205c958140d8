// Package pubmed implements the literature-search collaborator against the
// NCBI eutils search endpoint and the BioC full-text endpoint for PubMed
// Central. Lookup failure is best-effort enrichment for a review, never a
// correctness-critical dependency.
package pubmed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mwhittier/colloquy/internal/llm"
)

const (
	defaultSearchURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	defaultFetchURL  = "https://www.ncbi.nlm.nih.gov/research/bionlp/RESTful/pmcoa.cgi/BioC_JSON"

	defaultNumArticles = 3
	maxResponseBytes   = 8 << 20
)

// ToolName is the function name agents use to request a lookup mid-turn.
const ToolName = "pubmed_search"

// Query is one literature lookup request.
type Query struct {
	Query        string `json:"query"`
	NumArticles  int    `json:"num_articles"`
	AbstractOnly bool   `json:"abstract_only"`
}

// ParseToolArguments decodes the raw JSON arguments of a tool call.
func ParseToolArguments(raw string) Query {
	parsed := gjson.Parse(raw)
	q := Query{
		Query:        parsed.Get("query").String(),
		NumArticles:  int(parsed.Get("num_articles").Int()),
		AbstractOnly: parsed.Get("abstract_only").Bool(),
	}
	if q.NumArticles <= 0 {
		q.NumArticles = defaultNumArticles
	}
	return q
}

// ToolSpec returns the function-tool declaration advertised to the model.
func ToolSpec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        ToolName,
		Description: "Search PubMed Central for biomedical articles to verify claims or find related work.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query to use to search PubMed Central for scientific articles.",
				},
				"num_articles": map[string]any{
					"type":        "integer",
					"description": "The number of articles to return from the search query.",
				},
				"abstract_only": map[string]any{
					"type":        "boolean",
					"description": "Whether to return only the abstract of the articles.",
				},
			},
			"required": []string{"query", "num_articles"},
		},
	}
}

// Article is one retrieved PubMed Central article.
type Article struct {
	PMCID    string
	Title    string
	Passages []string
}

// LookupError reports a failed literature search. Callers absorb it into the
// transcript as a notice rather than aborting.
type LookupError struct {
	Query string
	Err   error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("pubmed: lookup %q failed: %v", e.Query, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Client talks to the NCBI endpoints.
type Client struct {
	httpClient *http.Client
	searchURL  string
	fetchURL   string
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the transport (tests point it at a local server).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithEndpoints overrides the search and fetch base URLs.
func WithEndpoints(searchURL, fetchURL string) Option {
	return func(c *Client) {
		if searchURL != "" {
			c.searchURL = searchURL
		}
		if fetchURL != "" {
			c.fetchURL = fetchURL
		}
	}
}

// NewClient builds a client with a bounded request timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		searchURL:  defaultSearchURL,
		fetchURL:   defaultFetchURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs the esearch query and fetches up to NumArticles article bodies.
// Articles that fail to fetch or parse are skipped, not fatal; a fully failed
// search returns a LookupError.
func (c *Client) Search(ctx context.Context, q Query) ([]Article, error) {
	if strings.TrimSpace(q.Query) == "" {
		return nil, &LookupError{Query: q.Query, Err: fmt.Errorf("empty query")}
	}
	want := q.NumArticles
	if want <= 0 {
		want = defaultNumArticles
	}
	ids, err := c.searchIDs(ctx, q.Query, 2*want)
	if err != nil {
		return nil, &LookupError{Query: q.Query, Err: err}
	}
	articles := make([]Article, 0, want)
	for _, id := range ids {
		if len(articles) >= want {
			break
		}
		article, err := c.fetchArticle(ctx, id, q.AbstractOnly)
		if err != nil {
			continue
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func (c *Client) searchIDs(ctx context.Context, query string, retmax int) ([]string, error) {
	endpoint := fmt.Sprintf(
		"%s?db=pmc&term=%s&retmax=%d&retmode=json&sort=relevance",
		c.searchURL, url.QueryEscape(query), retmax,
	)
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, id := range gjson.GetBytes(body, "esearchresult.idlist").Array() {
		ids = append(ids, id.String())
	}
	return ids, nil
}

// Section types kept when reading article passages. Abstract-only lookups
// keep just the abstract.
var fullTextSections = map[string]bool{
	"ABSTRACT": true,
	"INTRO":    true,
	"RESULTS":  true,
	"DISCUSS":  true,
	"CONCL":    true,
	"METHODS":  true,
}

func (c *Client) fetchArticle(ctx context.Context, pmcid string, abstractOnly bool) (Article, error) {
	endpoint := fmt.Sprintf("%s/PMC%s/unicode", c.fetchURL, pmcid)
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return Article{}, err
	}
	passages := gjson.GetBytes(body, "0.documents.0.passages")
	if !passages.Exists() {
		return Article{}, fmt.Errorf("pubmed: PMC%s: no passages", pmcid)
	}
	article := Article{PMCID: pmcid}
	for _, passage := range passages.Array() {
		sectionType := passage.Get("infons.section_type").String()
		passageType := passage.Get("infons.type").String()
		text := passage.Get("text").String()
		if sectionType == "TITLE" && article.Title == "" {
			article.Title = text
			continue
		}
		if passageType != "abstract" && passageType != "paragraph" {
			continue
		}
		if abstractOnly {
			if sectionType != "ABSTRACT" {
				continue
			}
		} else if !fullTextSections[sectionType] {
			continue
		}
		article.Passages = append(article.Passages, text)
	}
	if article.Title == "" {
		return Article{}, fmt.Errorf("pubmed: PMC%s: no title", pmcid)
	}
	return article, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pubmed: %s returned %s", endpoint, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}

// FormatResults renders retrieved articles the way agents expect to read
// them. Zero articles yields an explicit not-found notice.
func FormatResults(query string, articles []Article) string {
	if len(articles) == 0 {
		return fmt.Sprintf("No articles found on PubMed Central for the query %q.", query)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Here are the top %d articles on PubMed Central for the query %q:\n\n", len(articles), query)
	for i, article := range articles {
		fmt.Fprintf(&sb, "[begin article %d]\n\nPMCID = %s\n\nTitle = %s\n\n%s\n\n[end article %d]",
			i+1, article.PMCID, article.Title, strings.Join(article.Passages, "\n"), i+1)
	}
	return sb.String()
}
