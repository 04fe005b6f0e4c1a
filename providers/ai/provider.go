package ai

import (
	"context"
	"errors"
)

var (
	// ErrMissingAPIKey is returned when a backend is used without credentials.
	ErrMissingAPIKey = errors.New("api key is not set")

	// ErrEmptyResponse is returned when the backend answered without any choice.
	ErrEmptyResponse = errors.New("empty response from provider")
)

// Provider is the interface every language model backend satisfies.
type Provider interface {
	// SendMessage sends a chat request and returns the completed response.
	// It returns an error if the call fails, the context is done, or the
	// response cannot be decoded.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// Name identifies the backend in logs and metrics.
	Name() string
}
