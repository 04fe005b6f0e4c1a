package tavily

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sanhariharan/ViralFlow.ai/internal/utils"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

const (
	// DefaultBaseURL is the public Tavily endpoint.
	DefaultBaseURL = "https://api.tavily.com"

	defaultMaxResults = 5
	maxResults        = 20
	summaryResults    = 10
	snippetLength     = 200
)

var (
	// ErrMissingAPIKey is returned by New when the key is empty.
	ErrMissingAPIKey = errors.New("tavily: api key is empty")

	// ErrEmptyQuery is returned by Search for a blank query.
	ErrEmptyQuery = errors.New("tavily: query is empty")
)

// Client calls the Tavily search API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint, typically a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the HTTP client. Its Timeout bounds every search.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

// New returns a Client authenticated with apiKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Search performs a web search and returns a summarized result optimized for
// prompt context. MaxResults defaults to 5 and is capped at 20; SearchDepth
// defaults to basic.
func (c *Client) Search(ctx context.Context, input SearchInput) (SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return SearchOutput{}, ErrEmptyQuery
	}

	observer := observability.FromContextOr(ctx, nil)
	ctx, span := observer.StartSpan(ctx, "tavily.search",
		observability.String(observability.AttrSearchProvider, "tavily"),
		observability.String(observability.AttrSearchQuery, input.Query),
	)
	defer span.End()
	ctx = observability.ContextWithSpan(ctx, span)

	apiResponse, err := c.fetch(ctx, input)
	status := "ok"
	if err != nil {
		status = "error"
	}
	observer.Counter(observability.MetricSearchRequests).Add(ctx, 1,
		observability.String(observability.AttrSearchProvider, "tavily"),
		observability.String(observability.AttrStatus, status),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, "search failed")
		return SearchOutput{}, err
	}

	results := make([]SearchResult, 0, len(apiResponse.Results))
	var summaryParts []string
	if len(apiResponse.Results) > 0 {
		summaryParts = append(summaryParts, fmt.Sprintf("Found %d results:", len(apiResponse.Results)))
	}
	for i, r := range apiResponse.Results {
		results = append(results, SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
		if i < summaryResults {
			summaryParts = append(summaryParts, fmt.Sprintf("\n%d. %s\n   URL: %s\n   %s",
				i+1, r.Title, r.URL, utils.TruncateString(r.Content, snippetLength)))
		}
	}

	summary := strings.Join(summaryParts, "\n")
	if summary == "" {
		summary = fmt.Sprintf("No results found for '%s'.", input.Query)
	}

	span.SetAttributes(observability.Int(observability.AttrSearchResults, len(results)))
	span.SetStatus(observability.StatusOK, "")

	return SearchOutput{
		Query:   input.Query,
		Answer:  apiResponse.Answer,
		Summary: summary,
		Results: results,
	}, nil
}

func (c *Client) fetch(ctx context.Context, input SearchInput) (*searchResponse, error) {
	depth := input.SearchDepth
	if depth == "" {
		depth = DepthBasic
	}
	limit := input.MaxResults
	if limit <= 0 {
		limit = defaultMaxResults
	}
	if limit > maxResults {
		limit = maxResults
	}

	body := searchRequest{
		APIKey:         c.apiKey,
		Query:          input.Query,
		SearchDepth:    depth,
		MaxResults:     limit,
		IncludeDomains: input.IncludeDomains,
		ExcludeDomains: input.ExcludeDomains,
		IncludeAnswer:  input.IncludeAnswer,
		Topic:          input.Topic,
	}

	_, response, err := utils.DoPostSync[searchResponse](ctx, c.httpClient, c.baseURL+"/search", body)
	if err != nil {
		var httpErr *utils.HTTPError
		if errors.As(err, &httpErr) {
			var decoded apiError
			if json.Unmarshal(httpErr.Body, &decoded) == nil && decoded.Detail.Error != "" {
				return nil, fmt.Errorf("tavily API error (status %d): %s", httpErr.StatusCode, decoded.Detail.Error)
			}
		}
		return nil, fmt.Errorf("tavily search: %w", err)
	}
	return response, nil
}
