package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/sanhariharan/ViralFlow.ai/core/client"
	"github.com/sanhariharan/ViralFlow.ai/patterns/graph"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
	"github.com/sanhariharan/ViralFlow.ai/providers/tool/tavily"
)

// HashtagResearch grounds per-platform hashtags on a web search.
type HashtagResearch struct {
	llm        client.Sender
	search     WebSearcher
	maxResults int
	observer   observability.Provider
}

// NewHashtagResearch returns the hashtag component. search may be nil, in
// which case the model works without search context.
func NewHashtagResearch(llm client.Sender, search WebSearcher, maxResults int, observer observability.Provider) *HashtagResearch {
	return &HashtagResearch{llm: llm, search: search, maxResults: maxResults, observer: observer}
}

// Research returns hashtags for every platform in platforms. A search failure
// leaves the model without context; a model or parse failure yields an empty
// list for every platform. Both report StatusFallback.
func (h *HashtagResearch) Research(ctx context.Context, metadata Metadata, platforms []Platform) (map[Platform][]string, StepStatus) {
	status := StatusOK
	var causes []error

	searchContext, err := h.searchContext(ctx, metadata)
	if err != nil {
		status = StatusFallback
		causes = append(causes, err)
	}

	generated, _, err := client.SendStructured[map[string][]string](ctx, h.llm,
		hashtagPrompt(metadata.Topic, metadata.Keywords, searchContext, platforms),
		client.WithInstructions(hashtagInstructions),
	)
	if err != nil {
		status = StatusFallback
		causes = append(causes, fmt.Errorf("generate hashtags: %w", err))
		generated = nil
	}

	byPlatform := make(map[Platform][]string, len(generated))
	for name, tags := range generated {
		platform := Platform(strings.ToLower(strings.TrimSpace(name)))
		byPlatform[platform] = append(byPlatform[platform], tags...)
	}

	hashtags := make(map[Platform][]string, len(platforms))
	for _, platform := range platforms {
		hashtags[platform] = NormalizeHashtags(byPlatform[platform])
	}

	var cause error
	if len(causes) > 0 {
		cause = causes[len(causes)-1]
	}
	recordStep(ctx, h.observer, StepHashtags, status, cause)
	return hashtags, status
}

func (h *HashtagResearch) searchContext(ctx context.Context, metadata Metadata) (string, error) {
	if h.search == nil {
		return "", nil
	}
	output, err := h.search.Search(ctx, tavily.SearchInput{
		Query:       hashtagSearchQuery(metadata.Topic, metadata.Keywords),
		SearchDepth: tavily.DepthBasic,
		MaxResults:  h.maxResults,
	})
	if err != nil {
		return "", fmt.Errorf("search trends: %w", err)
	}
	if len(output.Results) == 0 {
		return "", nil
	}
	return output.Summary, nil
}

// Step wraps Research. It writes Hashtags.
func (h *HashtagResearch) Step() graph.Step[State] {
	return graph.StepFunc[State](func(ctx context.Context, state State) (graph.Update[State], error) {
		hashtags, status := h.Research(ctx, state.Metadata, state.Platforms)
		return func(s *State) {
			s.Hashtags = hashtags
			s.Steps[StepHashtags] = status
		}, nil
	})
}

// NormalizeHashtags trims tags, removes inner whitespace, gives each exactly
// one leading '#', and drops empty and case-insensitive duplicate tags. The
// result is never nil.
func NormalizeHashtags(raw []string) []string {
	tags := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, tag := range raw {
		tag = strings.Join(strings.Fields(tag), "")
		tag = strings.TrimLeft(tag, "#")
		if tag == "" {
			continue
		}
		tag = "#" + tag
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}
	return tags
}
