package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sanhariharan/ViralFlow.ai/core/client"
	"github.com/sanhariharan/ViralFlow.ai/patterns/graph"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
	"github.com/sanhariharan/ViralFlow.ai/providers/tool/serper"
)

const (
	defaultImageCount  = 4
	defaultVisualTopic = "general topic"
)

var errEmptyQuery = errors.New("model returned an empty image query")

// Visuals finds candidate images for a topic. It reads nothing but its
// arguments, so it serves both the graph and the standalone refresh.
type Visuals struct {
	llm      client.Sender
	images   ImageSearcher
	count    int
	observer observability.Provider
}

// NewVisuals returns the visuals component. A nil images searcher disables
// it without any model call.
func NewVisuals(llm client.Sender, images ImageSearcher, count int, observer observability.Provider) *Visuals {
	if count <= 0 {
		count = defaultImageCount
	}
	return &Visuals{llm: llm, images: images, count: count, observer: observer}
}

// Find returns up to count image URLs for topic and keywords.
func (v *Visuals) Find(ctx context.Context, topic string, keywords []string) ([]string, StepStatus) {
	if v.images == nil {
		recordStep(ctx, v.observer, StepVisuals, StatusSkipped, nil,
			observability.String("pipeline.skip_reason", "image search not configured"),
		)
		return []string{}, StatusSkipped
	}

	urls, err := v.find(ctx, topic, keywords)
	if err != nil {
		recordStep(ctx, v.observer, StepVisuals, StatusFallback, err)
		return []string{}, StatusFallback
	}

	recordStep(ctx, v.observer, StepVisuals, StatusOK, nil,
		observability.Int(observability.AttrSearchResults, len(urls)),
	)
	return urls, StatusOK
}

func (v *Visuals) find(ctx context.Context, topic string, keywords []string) ([]string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = defaultVisualTopic
	}

	response, err := v.llm.SendMessage(ctx, visualsPrompt(topic, keywords),
		client.WithInstructions(visualsInstructions),
	)
	if err != nil {
		return nil, fmt.Errorf("generate image query: %w", err)
	}
	query := cleanQuery(response.Content)
	if query == "" {
		return nil, errEmptyQuery
	}

	output, err := v.images.Images(ctx, serper.ImagesInput{Query: query, Num: v.count})
	if err != nil {
		return nil, fmt.Errorf("search images: %w", err)
	}
	return output.URLs(v.count), nil
}

// cleanQuery keeps the first non-empty line and strips surrounding quotes.
func cleanQuery(reply string) string {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "\"'`")
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

// Step wraps Find. It writes Visuals.
func (v *Visuals) Step() graph.Step[State] {
	return graph.StepFunc[State](func(ctx context.Context, state State) (graph.Update[State], error) {
		urls, status := v.Find(ctx, state.Metadata.Topic, state.Metadata.Keywords)
		return func(s *State) {
			s.Visuals = urls
			s.Steps[StepVisuals] = status
		}, nil
	})
}
