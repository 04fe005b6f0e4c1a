package eino

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanhariharan/ViralFlow.ai/internal/utils"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai"
)

type fakeChatModel struct {
	received []*schema.Message
	options  int
	output   *schema.Message
	err      error
}

func (fake *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	fake.received = input
	fake.options = len(opts)
	return fake.output, fake.err
}

func TestSendMessageConvertsMessagesAndUsage(testCase *testing.T) {
	fake := &fakeChatModel{output: &schema.Message{
		Role:    schema.Assistant,
		Content: "polished",
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: "stop",
			Usage:        &schema.TokenUsage{PromptTokens: 4, CompletionTokens: 6, TotalTokens: 10},
		},
	}}

	provider := NewWithModel(fake)
	response, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Model:        "llama-3.3-70b-versatile",
		SystemPrompt: "system rules",
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: "question"},
			{Role: ai.RoleAssistant, Content: "earlier answer"},
		},
		GenerationConfig: &ai.GenerationConfig{Temperature: utils.Ptr(float32(0.7)), MaxTokens: 100},
	})
	require.NoError(testCase, err)

	require.Len(testCase, fake.received, 3)
	assert.Equal(testCase, schema.System, fake.received[0].Role)
	assert.Equal(testCase, schema.User, fake.received[1].Role)
	assert.Equal(testCase, schema.Assistant, fake.received[2].Role)
	assert.Equal(testCase, 3, fake.options)

	assert.Equal(testCase, "polished", response.Content)
	assert.Equal(testCase, "stop", response.FinishReason)
	require.NotNil(testCase, response.Usage)
	assert.Equal(testCase, 10, response.Usage.TotalTokens)
	assert.Equal(testCase, "eino", provider.Name())
}

func TestSendMessagePassesZeroTemperature(testCase *testing.T) {
	fake := &fakeChatModel{output: &schema.Message{Role: schema.Assistant, Content: "steady"}}

	provider := NewWithModel(fake)
	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Messages:         []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
		GenerationConfig: &ai.GenerationConfig{Temperature: utils.Ptr(float32(0))},
	})
	require.NoError(testCase, err)
	assert.Equal(testCase, 1, fake.options)
}

func TestSendMessageWrapsModelError(testCase *testing.T) {
	provider := NewWithModel(&fakeChatModel{err: errors.New("upstream down")})

	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{})
	require.Error(testCase, err)
	assert.Contains(testCase, err.Error(), "upstream down")
}

func TestSendMessageNilOutput(testCase *testing.T) {
	provider := NewWithModel(&fakeChatModel{})

	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{})
	assert.True(testCase, errors.Is(err, ai.ErrEmptyResponse))
}

func TestNewRequiresAPIKey(testCase *testing.T) {
	_, err := New(context.Background(), Config{Model: "m"})
	assert.True(testCase, errors.Is(err, ai.ErrMissingAPIKey))
}
