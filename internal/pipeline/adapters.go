package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sanhariharan/ViralFlow.ai/core/client"
	"github.com/sanhariharan/ViralFlow.ai/patterns/graph"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

// ErrEmptyReply is returned when the model answers with blank text.
var ErrEmptyReply = errors.New("model returned an empty reply")

// Adapter rewrites the source content for one platform.
type Adapter struct {
	llm      client.Sender
	observer observability.Provider
}

// NewAdapter returns the platform adapter component.
func NewAdapter(llm client.Sender, observer observability.Provider) *Adapter {
	return &Adapter{llm: llm, observer: observer}
}

// Write drafts the post for platform.
func (a *Adapter) Write(ctx context.Context, platform Platform, content string, metadata Metadata) (string, error) {
	if _, known := platformTasks[platform]; !known {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}

	response, err := a.llm.SendMessage(ctx,
		adapterPrompt(platform, content, metadata),
		client.WithInstructions(adapterInstructions),
	)
	if err != nil {
		return "", fmt.Errorf("draft %s post: %w", platform, err)
	}

	draft := strings.TrimSpace(response.Content)
	if draft == "" {
		return "", ErrEmptyReply
	}
	return draft, nil
}

// Step wraps Write for platform. It writes PlatformOutputs[platform] on
// success and nothing but its status on failure.
func (a *Adapter) Step(platform Platform) graph.Step[State] {
	stepName := AdapterStep(platform)

	return graph.StepFunc[State](func(ctx context.Context, state State) (graph.Update[State], error) {
		draft, err := a.Write(ctx, platform, state.BaseContent, state.Metadata)
		if err != nil {
			recordStep(ctx, a.observer, stepName, StatusFallback, err,
				observability.String(observability.AttrPlatform, string(platform)),
			)
			return func(s *State) {
				s.Steps[stepName] = StatusFallback
			}, nil
		}

		recordStep(ctx, a.observer, stepName, StatusOK, nil,
			observability.String(observability.AttrPlatform, string(platform)),
		)
		return func(s *State) {
			s.PlatformOutputs[platform] = draft
			s.Steps[stepName] = StatusOK
		}, nil
	})
}
