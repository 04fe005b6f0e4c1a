package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/sanhariharan/ViralFlow.ai/internal/utils"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai"
)

// Sender is the part of Client used by callers that only send messages.
// Test doubles implement it directly.
type Sender interface {
	SendMessage(ctx context.Context, prompt string, opts ...SendMessageOption) (*ai.ChatResponse, error)
}

var _ Sender = (*Client)(nil)

// SchemaFor infers the JSON schema of T from its Go definition and json tags.
func SchemaFor[T any]() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, fmt.Errorf("client: infer schema for %T: %w", *new(T), err)
	}
	return schema, nil
}

// ParseResponseAs decodes the reply content into T, tolerating code fences,
// surrounding prose and minor JSON defects.
func ParseResponseAs[T any](response *ai.ChatResponse) (T, error) {
	var zero T
	if response == nil {
		return zero, errors.New("client: response is nil")
	}
	data, err := utils.ParseLooseAs[T](response.Content)
	if err != nil {
		return zero, fmt.Errorf("client: parse structured output: %w", err)
	}
	return data, nil
}

// ErrSchemaViolation is returned by SendValidated when the reply does not
// match the output schema.
var ErrSchemaViolation = errors.New("client: reply violates output schema")

// SendStructured sends prompt in JSON mode with T's schema attached and
// decodes the reply into T. The raw response is returned alongside for usage
// accounting, and is non-nil even when decoding fails.
func SendStructured[T any](ctx context.Context, sender Sender, prompt string, opts ...SendMessageOption) (T, *ai.ChatResponse, error) {
	return sendStructured[T](ctx, sender, prompt, false, opts)
}

// SendValidated is SendStructured plus a check of the reply against T's
// schema before decoding: missing required fields and wrongly typed values
// wrap ErrSchemaViolation. Fields outside the schema are tolerated.
func SendValidated[T any](ctx context.Context, sender Sender, prompt string, opts ...SendMessageOption) (T, *ai.ChatResponse, error) {
	return sendStructured[T](ctx, sender, prompt, true, opts)
}

func sendStructured[T any](ctx context.Context, sender Sender, prompt string, validate bool, opts []SendMessageOption) (T, *ai.ChatResponse, error) {
	var zero T

	schema, err := SchemaFor[T]()
	if err != nil {
		return zero, nil, err
	}
	var resolved *jsonschema.Resolved
	if validate {
		if resolved, err = validationSchema(schema); err != nil {
			return zero, nil, err
		}
	}

	opts = append([]SendMessageOption{WithOutputSchema(schema)}, opts...)
	response, err := sender.SendMessage(ctx, prompt, opts...)
	if err != nil {
		return zero, nil, err
	}

	if resolved != nil {
		instance, err := utils.ParseJSONValue(response.Content)
		if err != nil {
			return zero, response, fmt.Errorf("client: parse structured output: %w", err)
		}
		if err := resolved.Validate(instance); err != nil {
			return zero, response, fmt.Errorf("%w: %w", ErrSchemaViolation, err)
		}
	}

	data, err := ParseResponseAs[T](response)
	if err != nil {
		return zero, response, err
	}
	return data, response, nil
}

// validationSchema resolves a copy of schema that accepts properties it does
// not declare.
func validationSchema(schema *jsonschema.Schema) (*jsonschema.Resolved, error) {
	relaxed := schema.CloneSchemas()
	if relaxed.Properties != nil {
		relaxed.AdditionalProperties = nil
	}
	resolved, err := relaxed.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("client: resolve output schema: %w", err)
	}
	return resolved, nil
}
