package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

// HTTPError is returned by DoPostSync when the server answers with a non-2xx
// status. Body holds the raw response so callers can decode provider-specific
// error envelopes.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, TruncateString(string(e.Body), 300))
}

// RequestOption adjusts the outgoing request before it is sent.
type RequestOption func(*http.Request)

// WithBearerToken sets "Authorization: Bearer <token>" when token is non-empty.
func WithBearerToken(token string) RequestOption {
	return func(request *http.Request) {
		if token != "" {
			request.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithHeader sets an arbitrary request header.
func WithHeader(key, value string) RequestOption {
	return func(request *http.Request) {
		request.Header.Set(key, value)
	}
}

// DoPostSync performs a synchronous HTTP POST request with JSON body and parses the response.
// Span events are added to the span found in ctx, if any.
//
// Context errors and transport failures are wrapped and returned as-is; non-2xx
// replies become *HTTPError; JSON decoding errors include a preview of the body.
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, body any, opts ...RequestOption) (*http.Response, *OutputStruct, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	if span != nil {
		span.AddEvent("http.request.prepared",
			observability.String(observability.AttrHTTPMethod, http.MethodPost),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, len(jsonBody)),
		)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(request)
	}

	requestStart := time.Now()
	response, err := httpClient.Do(request)
	requestDuration := time.Since(requestStart)
	if err != nil {
		if span != nil {
			span.AddEvent("http.request.error",
				observability.Error(err),
				observability.Duration("http.request.duration", requestDuration),
			)
		}
		return nil, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer func(body io.ReadCloser) {
		if closeErr := body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr.Error(), "url", url)
		}
	}(response.Body)

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return response, nil, fmt.Errorf("error reading response body: %w", err)
	}

	if span != nil {
		span.AddEvent("http.response.received",
			observability.Int(observability.AttrHTTPStatusCode, response.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(responseBody)),
			observability.Duration("http.request.duration", requestDuration),
		)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return response, nil, &HTTPError{StatusCode: response.StatusCode, Body: responseBody}
	}

	var output OutputStruct
	if err = json.Unmarshal(responseBody, &output); err != nil {
		return response, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s",
			response.StatusCode, err, TruncateString(string(responseBody), 500))
	}

	return response, &output, nil
}
