package openai

import (
	"encoding/json"

	"github.com/sanhariharan/ViralFlow.ai/internal/utils"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai"
)

/*
	CHAT COMPLETIONS API - INPUT
*/

type chatCompletionRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	Temperature    *float64            `json:"temperature,omitempty"`
	MaxTokens      *int                `json:"max_tokens,omitempty"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

/*
	CONVERSIONS
*/

func requestFromGeneric(request ai.ChatRequest) chatCompletionRequest {
	messages := make([]chatMessage, 0, len(request.Messages)+1)
	if request.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: string(ai.RoleSystem), Content: request.SystemPrompt})
	}
	for _, message := range request.Messages {
		messages = append(messages, chatMessage{Role: string(message.Role), Content: message.Content})
	}

	wire := chatCompletionRequest{
		Model:    request.Model,
		Messages: messages,
	}

	if config := request.GenerationConfig; config != nil {
		if config.Temperature != nil {
			wire.Temperature = utils.Ptr(float64(*config.Temperature))
		}
		if config.MaxTokens > 0 {
			maxTokens := config.MaxTokens
			wire.MaxTokens = &maxTokens
		}
	}

	if format := request.ResponseFormat; format != nil && format.Type == ai.ResponseFormatJSONObject {
		wire.ResponseFormat = &chatResponseFormat{Type: ai.ResponseFormatJSONObject}
	}

	return wire
}

func responseToGeneric(response *chatCompletionResponse) *ai.ChatResponse {
	choice := response.Choices[0]
	generic := &ai.ChatResponse{
		Id:           response.ID,
		Model:        response.Model,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
	}
	if response.Usage != nil {
		generic.Usage = &ai.Usage{
			PromptTokens:     response.Usage.PromptTokens,
			CompletionTokens: response.Usage.CompletionTokens,
			TotalTokens:      response.Usage.TotalTokens,
		}
	}
	return generic
}

func decodeAPIError(body []byte) string {
	var envelope apiErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Error.Message
}
