// Package search retrieves web results for a research topic through the
// SerpApi DuckDuckGo engine and formats them into a plain-text block the
// summarization step can consume directly.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the hosted SerpApi search endpoint.
	DefaultEndpoint = "https://serpapi.com/search"

	// DefaultResults caps how many organic results a query fetches.
	DefaultResults = 5

	// DefaultTimeout bounds a single search round trip.
	DefaultTimeout = 30 * time.Second

	engine = "duckduckgo"

	// missingField fills in for results the provider returns incomplete.
	missingField = "N/A"
)

// Searcher performs a web search and returns formatted results.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Error is a failed search attempt. Searches fail as internal errors,
// never as backend-availability errors, since the provider is a hosted
// API and not the local model backend.
type Error struct {
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("search: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("search: %s", e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config holds the settings for a Client. Zero values fall back to the
// package defaults, except APIKey which has no default.
type Config struct {
	Endpoint string
	APIKey   string
	Results  int
	Timeout  time.Duration
}

// Client queries SerpApi over HTTP.
type Client struct {
	endpoint   string
	apiKey     string
	results    int
	httpClient *http.Client
}

// NewClient creates a search client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Results <= 0 {
		cfg.Results = DefaultResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		results:  cfg.Results,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type organicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	OrganicResults []organicResult `json:"organic_results"`
}

// Search runs query against the provider and formats each organic result as
// a numbered block of title, URL, and snippet. A query that genuinely
// matches nothing succeeds with a "no results" sentence rather than failing,
// since an obscure topic is not an error.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", &Error{Detail: "query is empty"}
	}
	if c.apiKey == "" {
		return "", &Error{Detail: "search API key is not configured"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return "", &Error{Detail: "building request", Err: err}
	}

	params := url.Values{}
	params.Set("engine", engine)
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("num", strconv.Itoa(c.results))
	req.URL.RawQuery = params.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Detail: "search provider request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{Detail: fmt.Sprintf("search provider returned status %d", resp.StatusCode)}
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &Error{Detail: "decoding search provider response", Err: err}
	}

	return formatResults(query, parsed.OrganicResults), nil
}

func formatResults(query string, results []organicResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No relevant search results found for '%s'.", query)
	}

	blocks := make([]string, 0, len(results))
	for i, result := range results {
		blocks = append(blocks, fmt.Sprintf(
			"Result %d:\nTitle: %s\nURL: %s\nSnippet: %s\n---",
			i+1,
			orMissing(result.Title),
			orMissing(result.Link),
			orMissing(result.Snippet),
		))
	}

	return strings.Join(blocks, "\n")
}

func orMissing(s string) string {
	if s == "" {
		return missingField
	}
	return s
}
