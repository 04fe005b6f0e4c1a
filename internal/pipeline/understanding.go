package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/sanhariharan/ViralFlow.ai/core/client"
	"github.com/sanhariharan/ViralFlow.ai/internal/utils"
	"github.com/sanhariharan/ViralFlow.ai/patterns/graph"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

const (
	maxKeywords       = 5
	fallbackValue     = "general"
	summaryRuneLength = 100
)

var errMissingTopic = errors.New("metadata has no topic")

// Understanding extracts Metadata from the source content.
type Understanding struct {
	llm      client.Sender
	observer observability.Provider
}

// NewUnderstanding returns the Content Understanding component.
func NewUnderstanding(llm client.Sender, observer observability.Provider) *Understanding {
	return &Understanding{llm: llm, observer: observer}
}

// FallbackMetadata is the metadata used when extraction fails.
func FallbackMetadata(content, tone string) Metadata {
	return Metadata{
		Intent:   fallbackValue,
		Audience: fallbackValue,
		Keywords: []string{},
		Topic:    fallbackValue,
		Tone:     tone,
		Summary:  utils.FirstRunes(content, summaryRuneLength),
	}
}

// Analyze asks the model for structured metadata. The reply must satisfy the
// Metadata schema; any model, parse or validation failure yields
// FallbackMetadata and StatusFallback.
func (u *Understanding) Analyze(ctx context.Context, content, tone string) (Metadata, StepStatus) {
	metadata, _, err := client.SendValidated[Metadata](ctx, u.llm,
		understandingPrompt(content, tone),
		client.WithInstructions(understandingInstructions),
	)
	if err == nil {
		metadata, err = normalizeMetadata(metadata, tone)
	}
	if err != nil {
		recordStep(ctx, u.observer, StepUnderstanding, StatusFallback, err)
		return FallbackMetadata(content, tone), StatusFallback
	}

	recordStep(ctx, u.observer, StepUnderstanding, StatusOK, nil,
		observability.String("pipeline.topic", metadata.Topic),
	)
	return metadata, StatusOK
}

// Step wraps Analyze as the graph entry node. It writes Metadata.
func (u *Understanding) Step() graph.Step[State] {
	return graph.StepFunc[State](func(ctx context.Context, state State) (graph.Update[State], error) {
		metadata, status := u.Analyze(ctx, state.BaseContent, state.Tone)
		return func(s *State) {
			s.Metadata = metadata
			s.Steps[StepUnderstanding] = status
		}, nil
	})
}

func normalizeMetadata(metadata Metadata, tone string) (Metadata, error) {
	metadata.Intent = strings.TrimSpace(metadata.Intent)
	metadata.Audience = strings.TrimSpace(metadata.Audience)
	metadata.Topic = strings.TrimSpace(metadata.Topic)
	metadata.Tone = strings.TrimSpace(metadata.Tone)
	metadata.Summary = strings.TrimSpace(metadata.Summary)

	if metadata.Topic == "" {
		return Metadata{}, errMissingTopic
	}
	if metadata.Tone == "" {
		metadata.Tone = tone
	}
	metadata.Keywords = normalizeKeywords(metadata.Keywords)
	return metadata, nil
}

// normalizeKeywords splits comma-joined entries, trims, drops empty and
// case-insensitive duplicates, and keeps at most five.
func normalizeKeywords(raw []string) []string {
	keywords := make([]string, 0, maxKeywords)
	seen := make(map[string]bool)

	for _, entry := range raw {
		for _, keyword := range strings.Split(entry, ",") {
			keyword = strings.TrimSpace(keyword)
			key := strings.ToLower(keyword)
			if keyword == "" || seen[key] {
				continue
			}
			seen[key] = true
			keywords = append(keywords, keyword)
			if len(keywords) == maxKeywords {
				return keywords
			}
		}
	}
	return keywords
}
