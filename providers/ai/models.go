package ai

import "github.com/google/jsonschema-go/jsonschema"

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest represents a request to send a chat message
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`             // Model name or identifier
	Messages         []Message         `json:"messages"`                    // Conversation without the system prompt
	SystemPrompt     string            `json:"system_prompt,omitempty"`     // Optional system prompt
	ResponseFormat   *ResponseFormat   `json:"response_format,omitempty"`   // Optional response format
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"` // Optional generation configuration
}

// Message represents a single message in a conversation
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`
}

type GenerationConfig struct {
	MaxTokens   int      `json:"max_tokens,omitempty"`  // Optional max tokens for the response
	Temperature *float32 `json:"temperature,omitempty"` // Sampling temperature [0..2]; nil leaves the backend default. Zero is deterministic.
}

// Response format types understood by the backends.
const (
	ResponseFormatText       = "text"
	ResponseFormatJSONObject = "json_object"
)

type ResponseFormat struct {
	Type         string             `json:"type,omitempty"`          // "text" or "json_object"
	OutputSchema *jsonschema.Schema `json:"output_schema,omitempty"` // Shape the JSON reply should follow; rendered into the prompt
}

/*
	##### PROVIDER OUTPUT #####
*/

type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ChatResponse represents the response from a chat completion
type ChatResponse struct {
	Id           string `json:"id"`
	Model        string `json:"model"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
}

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)
