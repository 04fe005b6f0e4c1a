package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanhariharan/ViralFlow.ai/internal/utils"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai"
)

func newTestServer(testCase *testing.T, handler func(request chatCompletionRequest) (int, string)) *httptest.Server {
	testCase.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(testCase, chatCompletionsEndpoint, request.URL.Path)
		assert.Equal(testCase, "Bearer test-key", request.Header.Get("Authorization"))

		var decoded chatCompletionRequest
		require.NoError(testCase, json.NewDecoder(request.Body).Decode(&decoded))

		status, body := handler(decoded)
		writer.WriteHeader(status)
		_, _ = writer.Write([]byte(body))
	}))
	testCase.Cleanup(server.Close)
	return server
}

func TestSendMessageMapsRequestAndResponse(testCase *testing.T) {
	server := newTestServer(testCase, func(request chatCompletionRequest) (int, string) {
		assert.Equal(testCase, "llama-3.3-70b-versatile", request.Model)
		require.Len(testCase, request.Messages, 2)
		assert.Equal(testCase, "system", request.Messages[0].Role)
		assert.Equal(testCase, "be brief", request.Messages[0].Content)
		assert.Equal(testCase, "user", request.Messages[1].Role)
		require.NotNil(testCase, request.Temperature)
		assert.InDelta(testCase, 0.7, *request.Temperature, 0.0001)
		require.NotNil(testCase, request.ResponseFormat)
		assert.Equal(testCase, "json_object", request.ResponseFormat.Type)

		return http.StatusOK, `{"id":"c1","model":"llama-3.3-70b-versatile","choices":[{"index":0,"message":{"role":"assistant","content":"{\"ok\":true}"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`
	})

	provider := NewOpenAIProvider("test-key").WithBaseURL(server.URL + "/").WithHttpClient(server.Client())
	response, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Model:            "llama-3.3-70b-versatile",
		SystemPrompt:     "be brief",
		Messages:         []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
		GenerationConfig: &ai.GenerationConfig{Temperature: utils.Ptr(float32(0.7))},
		ResponseFormat:   &ai.ResponseFormat{Type: ai.ResponseFormatJSONObject},
	})
	require.NoError(testCase, err)
	assert.Equal(testCase, `{"ok":true}`, response.Content)
	assert.Equal(testCase, "stop", response.FinishReason)
	require.NotNil(testCase, response.Usage)
	assert.Equal(testCase, 5, response.Usage.TotalTokens)
}

func TestSendMessageOmitsUnsetGenerationFields(testCase *testing.T) {
	server := newTestServer(testCase, func(request chatCompletionRequest) (int, string) {
		assert.Nil(testCase, request.Temperature)
		assert.Nil(testCase, request.MaxTokens)
		assert.Nil(testCase, request.ResponseFormat)
		assert.Len(testCase, request.Messages, 1)
		return http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"plain"}}]}`
	})

	provider := NewOpenAIProvider("test-key").WithBaseURL(server.URL)
	response, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	require.NoError(testCase, err)
	assert.Equal(testCase, "plain", response.Content)
}

func TestSendMessageSendsZeroTemperature(testCase *testing.T) {
	server := newTestServer(testCase, func(request chatCompletionRequest) (int, string) {
		require.NotNil(testCase, request.Temperature)
		assert.Zero(testCase, *request.Temperature)
		return http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"steady"}}]}`
	})

	provider := NewOpenAIProvider("test-key").WithBaseURL(server.URL)
	response, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Messages:         []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
		GenerationConfig: &ai.GenerationConfig{Temperature: utils.Ptr(float32(0))},
	})
	require.NoError(testCase, err)
	assert.Equal(testCase, "steady", response.Content)
}

func TestSendMessageSurfacesAPIError(testCase *testing.T) {
	server := newTestServer(testCase, func(chatCompletionRequest) (int, string) {
		return http.StatusUnauthorized, `{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`
	})

	provider := NewOpenAIProvider("test-key").WithBaseURL(server.URL)
	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{})
	require.Error(testCase, err)
	assert.Contains(testCase, err.Error(), "Invalid API Key")
	assert.Contains(testCase, err.Error(), "401")
}

func TestSendMessageNoChoices(testCase *testing.T) {
	server := newTestServer(testCase, func(chatCompletionRequest) (int, string) {
		return http.StatusOK, `{"choices":[]}`
	})

	provider := NewOpenAIProvider("test-key").WithBaseURL(server.URL)
	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{})
	assert.True(testCase, errors.Is(err, ai.ErrEmptyResponse))
}

func TestSendMessageRequiresAPIKey(testCase *testing.T) {
	_, err := NewOpenAIProvider("").SendMessage(context.Background(), ai.ChatRequest{})
	assert.True(testCase, errors.Is(err, ai.ErrMissingAPIKey))
}
