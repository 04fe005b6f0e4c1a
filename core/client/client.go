package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/sanhariharan/ViralFlow.ai/core/overview"
	"github.com/sanhariharan/ViralFlow.ai/internal/utils"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

var (
	// ErrNilProvider is returned by New when no provider is supplied.
	ErrNilProvider = errors.New("client: provider is nil")

	// ErrEmptyPrompt is returned by SendMessage for a blank prompt.
	ErrEmptyPrompt = errors.New("client: prompt is empty")

	// ErrNilMiddleware is returned by New when a MiddlewareConfig has no Send function.
	ErrNilMiddleware = errors.New("client: middleware Send is nil")
)

// Client is an immutable, concurrency-safe handle on a language model.
type Client struct {
	provider   ai.Provider
	model      string
	generation ai.GenerationConfig
	observer   observability.Provider
	send       SendFunc
}

// ClientOptions collects the settings applied by New.
type ClientOptions struct {
	Model       string
	Temperature *float32
	MaxTokens   int
	Observer    observability.Provider
	Middlewares []MiddlewareConfig
}

// WithModel sets the model identifier sent with every request.
func WithModel(model string) func(*ClientOptions) {
	return func(options *ClientOptions) {
		options.Model = model
	}
}

// WithTemperature sets the sampling temperature. Zero is sent as is;
// leave the option out to use the backend default.
func WithTemperature(temperature float32) func(*ClientOptions) {
	return func(options *ClientOptions) {
		options.Temperature = utils.Ptr(temperature)
	}
}

// WithMaxTokens caps the completion length. Zero leaves it to the provider.
func WithMaxTokens(maxTokens int) func(*ClientOptions) {
	return func(options *ClientOptions) {
		options.MaxTokens = maxTokens
	}
}

// WithObserver attaches an observability provider to every call.
func WithObserver(observer observability.Provider) func(*ClientOptions) {
	return func(options *ClientOptions) {
		options.Observer = observer
	}
}

// WithMiddleware appends middlewares. The first one given is the outermost.
func WithMiddleware(middlewares ...MiddlewareConfig) func(*ClientOptions) {
	return func(options *ClientOptions) {
		options.Middlewares = append(options.Middlewares, middlewares...)
	}
}

// New builds a Client around provider.
func New(provider ai.Provider, opts ...func(*ClientOptions)) (*Client, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	options := &ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	for index, middleware := range options.Middlewares {
		if middleware.Send == nil {
			return nil, fmt.Errorf("%w (position %d)", ErrNilMiddleware, index)
		}
	}

	return &Client{
		provider: provider,
		model:    options.Model,
		generation: ai.GenerationConfig{
			Temperature: options.Temperature,
			MaxTokens:   options.MaxTokens,
		},
		observer: options.Observer,
		send:     buildSendChain(provider, options.Middlewares),
	}, nil
}

// Observer returns the configured observability provider, or nil.
func (c *Client) Observer() observability.Provider {
	return c.observer
}

// SendMessageOption customizes a single request.
type SendMessageOption func(*ai.ChatRequest)

// WithInstructions replaces the system prompt for one call.
func WithInstructions(instructions string) SendMessageOption {
	return func(request *ai.ChatRequest) {
		request.SystemPrompt = instructions
	}
}

// WithOutputSchema asks for a JSON object reply following schema.
func WithOutputSchema(schema *jsonschema.Schema) SendMessageOption {
	return func(request *ai.ChatRequest) {
		request.ResponseFormat = &ai.ResponseFormat{
			Type:         ai.ResponseFormatJSONObject,
			OutputSchema: schema,
		}
	}
}

// SendMessage sends prompt as a single user message and returns the reply.
// No conversation state is kept between calls.
func (c *Client) SendMessage(ctx context.Context, prompt string, opts ...SendMessageOption) (*ai.ChatResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	generation := c.generation
	request := ai.ChatRequest{
		Model:            c.model,
		Messages:         []ai.Message{{Role: ai.RoleUser, Content: prompt}},
		GenerationConfig: &generation,
	}
	for _, opt := range opts {
		opt(&request)
	}
	if err := attachSchema(&request); err != nil {
		return nil, err
	}

	observer := c.observer
	if observer == nil {
		observer = observability.ObserverFromContext(ctx)
	}

	start := time.Now()
	ctx, span := startCallSpan(ctx, observer, c.provider.Name(), request)
	response, err := c.send(ctx, request)
	finishCall(ctx, observer, span, c.provider.Name(), request.Model, response, err, time.Since(start))
	if tally := overview.FromContext(ctx); tally != nil {
		tally.Record(response, err)
	}
	if err != nil {
		return nil, err
	}
	return response, nil
}

// attachSchema renders the output schema into the system prompt so every
// backend sees it, including those without native schema support.
func attachSchema(request *ai.ChatRequest) error {
	if request.ResponseFormat == nil || request.ResponseFormat.OutputSchema == nil {
		return nil
	}
	encoded, err := json.Marshal(request.ResponseFormat.OutputSchema)
	if err != nil {
		return fmt.Errorf("client: encode output schema: %w", err)
	}

	instruction := "Respond with a single JSON object that validates against this JSON Schema:\n" + string(encoded)
	if request.SystemPrompt == "" {
		request.SystemPrompt = instruction
	} else {
		request.SystemPrompt += "\n\n" + instruction
	}
	return nil
}
