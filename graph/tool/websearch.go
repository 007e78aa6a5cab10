package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultSearchURL = "https://api.tavily.com/search"

var _ Tool = (*SearchTool)(nil)

// SearchResult is one hit from a web search.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// SearchTool queries the Tavily search API. It implements Tool and
// also exposes a typed Search method for callers that do not go
// through the tool-call map shape.
type SearchTool struct {
	apiKey     string
	baseURL    string
	maxResults int
	client     *http.Client
}

// SearchOption configures a SearchTool.
type SearchOption func(*SearchTool)

// WithMaxResults caps the number of results per query. Default 3.
func WithMaxResults(n int) SearchOption {
	return func(s *SearchTool) { s.maxResults = n }
}

// WithBaseURL overrides the API endpoint, mainly for tests against
// httptest servers.
func WithBaseURL(url string) SearchOption {
	return func(s *SearchTool) { s.baseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) SearchOption {
	return func(s *SearchTool) { s.client = c }
}

// NewSearchTool creates a search tool with the given Tavily API key.
func NewSearchTool(apiKey string, opts ...SearchOption) *SearchTool {
	s := &SearchTool{
		apiKey:     apiKey,
		baseURL:    defaultSearchURL,
		maxResults: 3,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the tool identifier.
func (s *SearchTool) Name() string {
	return "search_web"
}

// Call implements Tool. Input requires a "query" string; the output
// carries a "results" slice of SearchResult.
func (s *SearchTool) Call(ctx context.Context, input map[string]any) (map[string]any, error) {
	query, ok := input["query"].(string)
	if !ok || query == "" {
		return nil, fmt.Errorf("query parameter required (string)")
	}

	results, err := s.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return map[string]any{"results": results}, nil
}

// Search runs a query and returns the ranked results.
func (s *SearchTool) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	payload, err := json.Marshal(map[string]any{
		"api_key":     s.apiKey,
		"query":       query,
		"max_results": s.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned %d: %s", resp.StatusCode, body)
	}

	var parsed struct {
		Results []SearchResult `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return parsed.Results, nil
}
