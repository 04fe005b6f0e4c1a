package serper

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

// DefaultBaseURL is the public Serper endpoint.
const DefaultBaseURL = "https://google.serper.dev"

var (
	// ErrMissingAPIKey is returned by New when the key is empty.
	ErrMissingAPIKey = errors.New("serper: api key is empty")

	// ErrEmptyQuery is returned by Images for a blank query.
	ErrEmptyQuery = errors.New("serper: query is empty")
)

// Client calls the Serper image search API. It is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the HTTP client.
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

// Images runs an image search.
func (c *Client) Images(ctx context.Context, input ImagesInput) (ImagesOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return ImagesOutput{}, ErrEmptyQuery
	}

	observer := observability.FromContextOr(ctx, nil)
	ctx, span := observer.StartSpan(ctx, "serper.images",
		observability.String(observability.AttrSearchProvider, "serper"),
		observability.String(observability.AttrSearchQuery, input.Query),
	)
	defer span.End()
	ctx = observability.ContextWithSpan(ctx, span)

	_, output, err := utils.DoPostSync[ImagesOutput](ctx, c.httpClient, c.baseURL+"/images", input,
		utils.WithHeader("X-API-KEY", c.apiKey))

	status := "ok"
	if err != nil {
		status = "error"
	}
	observer.Counter(observability.MetricSearchRequests).Add(ctx, 1,
		observability.String(observability.AttrSearchProvider, "serper"),
		observability.String(observability.AttrStatus, status),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, "image search failed")
		var httpErr *utils.HTTPError
		if errors.As(err, &httpErr) {
			var decoded apiError
			if json.Unmarshal(httpErr.Body, &decoded) == nil && decoded.Message != "" {
				return ImagesOutput{}, fmt.Errorf("serper API error (status %d): %s", httpErr.StatusCode, decoded.Message)
			}
		}
		return ImagesOutput{}, fmt.Errorf("serper images: %w", err)
	}

	span.SetAttributes(observability.Int(observability.AttrSearchResults, len(output.Images)))
	span.SetStatus(observability.StatusOK, "")
	return *output, nil
}
