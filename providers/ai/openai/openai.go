package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sanhariharan/ViralFlow.ai/internal/utils"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible API root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	chatCompletionsEndpoint = "/chat/completions"
	providerName            = "openai"
)

// OpenAIProvider implements the Provider interface for OpenAI-compatible APIs.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ ai.Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a provider with the given key, the default base
// URL and http.DefaultClient.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  http.DefaultClient,
	}
}

// WithBaseURL sets the base URL for the API. An empty value keeps the current one.
func (p *OpenAIProvider) WithBaseURL(baseURL string) *OpenAIProvider {
	if baseURL != "" {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
	return p
}

// WithHttpClient sets a custom HTTP client
func (p *OpenAIProvider) WithHttpClient(httpClient *http.Client) *OpenAIProvider {
	if httpClient != nil {
		p.client = httpClient
	}
	return p
}

// Name implements ai.Provider.
func (p *OpenAIProvider) Name() string {
	return providerName
}

// SendMessage implements ai.Provider.
func (p *OpenAIProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, ai.ErrMissingAPIKey
	}

	_, response, err := utils.DoPostSync[chatCompletionResponse](ctx, p.client,
		p.baseURL+chatCompletionsEndpoint, requestFromGeneric(request), utils.WithBearerToken(p.apiKey))
	if err != nil {
		var httpErr *utils.HTTPError
		if errors.As(err, &httpErr) {
			if message := decodeAPIError(httpErr.Body); message != "" {
				return nil, fmt.Errorf("chat completion failed (status %d): %s", httpErr.StatusCode, message)
			}
		}
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, ai.ErrEmptyResponse
	}

	return responseToGeneric(response), nil
}
