package eino

import (
	"context"
	"errors"
	"fmt"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/sanhariharan/ViralFlow.ai/internal/utils"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai"
)

const providerName = "eino"

// ChatModel is the subset of Eino's model.BaseChatModel used here.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Config describes the OpenAI-compatible endpoint behind the Eino model.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int

	// Temperature is the default sampling temperature; nil leaves the
	// backend default.
	Temperature *float32
}

// Provider implements ai.Provider on top of an Eino chat model.
type Provider struct {
	model ChatModel
}

var _ ai.Provider = (*Provider)(nil)

// New builds the eino-ext OpenAI chat model described by config.
func New(ctx context.Context, config Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, ai.ErrMissingAPIKey
	}

	modelConfig := &einoopenai.ChatModelConfig{
		APIKey:  config.APIKey,
		BaseURL: config.BaseURL,
		Model:   config.Model,
	}
	if config.MaxTokens > 0 {
		maxTokens := config.MaxTokens
		modelConfig.MaxTokens = &maxTokens
	}
	if config.Temperature != nil {
		modelConfig.Temperature = utils.Ptr(*config.Temperature)
	}

	chatModel, err := einoopenai.NewChatModel(ctx, modelConfig)
	if err != nil {
		return nil, fmt.Errorf("error creating eino chat model: %w", err)
	}
	return NewWithModel(chatModel), nil
}

// NewWithModel wraps an already constructed Eino chat model.
func NewWithModel(chatModel ChatModel) *Provider {
	return &Provider{model: chatModel}
}

// Name implements ai.Provider.
func (p *Provider) Name() string {
	return providerName
}

// SendMessage implements ai.Provider.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.model == nil {
		return nil, errors.New("eino chat model is nil")
	}

	output, err := p.model.Generate(ctx, toSchemaMessages(request), toModelOptions(request)...)
	if err != nil {
		return nil, fmt.Errorf("eino generate failed: %w", err)
	}
	if output == nil {
		return nil, ai.ErrEmptyResponse
	}

	response := &ai.ChatResponse{
		Model:   request.Model,
		Content: output.Content,
	}
	if meta := output.ResponseMeta; meta != nil {
		response.FinishReason = meta.FinishReason
		if meta.Usage != nil {
			response.Usage = &ai.Usage{
				PromptTokens:     meta.Usage.PromptTokens,
				CompletionTokens: meta.Usage.CompletionTokens,
				TotalTokens:      meta.Usage.TotalTokens,
			}
		}
	}
	return response, nil
}

func toSchemaMessages(request ai.ChatRequest) []*schema.Message {
	messages := make([]*schema.Message, 0, len(request.Messages)+1)
	if request.SystemPrompt != "" {
		messages = append(messages, schema.SystemMessage(request.SystemPrompt))
	}
	for _, message := range request.Messages {
		switch message.Role {
		case ai.RoleSystem:
			messages = append(messages, schema.SystemMessage(message.Content))
		case ai.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(message.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(message.Content))
		}
	}
	return messages
}

func toModelOptions(request ai.ChatRequest) []model.Option {
	var options []model.Option
	if request.Model != "" {
		options = append(options, model.WithModel(request.Model))
	}
	if config := request.GenerationConfig; config != nil {
		if config.Temperature != nil {
			options = append(options, model.WithTemperature(*config.Temperature))
		}
		if config.MaxTokens > 0 {
			options = append(options, model.WithMaxTokens(config.MaxTokens))
		}
	}
	return options
}
