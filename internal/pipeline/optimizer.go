package pipeline

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sanhariharan/ViralFlow.ai/core/client"
	"github.com/sanhariharan/ViralFlow.ai/patterns/graph"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

const defaultTone = "neutral"

// Optimizer polishes every draft and merges in its hashtags.
type Optimizer struct {
	llm            client.Sender
	maxConcurrency int
	observer       observability.Provider
}

// NewOptimizer returns the optimizer. maxConcurrency bounds the concurrent
// polish calls; zero means one per platform.
func NewOptimizer(llm client.Sender, maxConcurrency int, observer observability.Provider) *Optimizer {
	return &Optimizer{llm: llm, maxConcurrency: maxConcurrency, observer: observer}
}

// Optimize polishes each draft independently. A platform whose polish fails
// keeps draft + "\n\n" + its space-joined hashtags.
func (o *Optimizer) Optimize(ctx context.Context, drafts map[Platform]string, hashtags map[Platform][]string, tone string) (map[Platform]string, StepStatus) {
	if strings.TrimSpace(tone) == "" {
		tone = defaultTone
	}

	platforms := make([]Platform, 0, len(drafts))
	for _, platform := range AllPlatforms {
		if _, present := drafts[platform]; present {
			platforms = append(platforms, platform)
		}
	}

	polished := make([]string, len(platforms))
	failures := make([]error, len(platforms))

	var group errgroup.Group
	if o.maxConcurrency > 0 {
		group.SetLimit(o.maxConcurrency)
	}
	for index, platform := range platforms {
		group.Go(func() error {
			tags := strings.Join(hashtags[platform], " ")
			text, err := o.polish(ctx, platform, drafts[platform], tags, tone)
			if err != nil {
				failures[index] = err
				text = drafts[platform] + "\n\n" + tags
			}
			polished[index] = text
			return nil
		})
	}
	_ = group.Wait()

	outputs := make(map[Platform]string, len(platforms))
	status := StatusOK
	var cause error
	for index, platform := range platforms {
		outputs[platform] = polished[index]
		if failures[index] != nil {
			status = StatusFallback
			cause = failures[index]
		}
	}

	recordStep(ctx, o.observer, StepOptimizer, status, cause,
		observability.Int("pipeline.platform_count", len(platforms)),
	)
	return outputs, status
}

func (o *Optimizer) polish(ctx context.Context, platform Platform, draft, tags, tone string) (string, error) {
	response, err := o.llm.SendMessage(ctx,
		optimizerPrompt(platform, draft, tags, tone),
		client.WithInstructions(optimizerInstructions),
	)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(response.Content)
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}

// Step wraps Optimize as the barrier node. It replaces PlatformOutputs.
func (o *Optimizer) Step() graph.Step[State] {
	return graph.StepFunc[State](func(ctx context.Context, state State) (graph.Update[State], error) {
		outputs, status := o.Optimize(ctx, state.PlatformOutputs, state.Hashtags, state.Metadata.Tone)
		return func(s *State) {
			s.PlatformOutputs = outputs
			s.Steps[StepOptimizer] = status
		}, nil
	})
}
