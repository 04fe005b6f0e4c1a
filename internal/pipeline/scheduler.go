package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/sanhariharan/ViralFlow.ai/core/client"
	"github.com/sanhariharan/ViralFlow.ai/patterns/graph"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

// BestTimeUnknown is the schedule of a platform the model gave no time for.
const BestTimeUnknown = "Best time unknown"

// Scheduler suggests a posting time per platform.
type Scheduler struct {
	llm      client.Sender
	observer observability.Provider
}

// NewScheduler returns the scheduling advisor.
func NewScheduler(llm client.Sender, observer observability.Provider) *Scheduler {
	return &Scheduler{llm: llm, observer: observer}
}

// Schedule returns an entry for every platform. Platforms without a usable
// answer get BestTimeUnknown and the status becomes StatusFallback.
func (s *Scheduler) Schedule(ctx context.Context, platforms []Platform, metadata Metadata) (map[Platform]string, StepStatus) {
	audience := strings.TrimSpace(metadata.Audience)
	if audience == "" {
		audience = fallbackValue
	}
	topic := strings.TrimSpace(metadata.Topic)
	if topic == "" {
		topic = fallbackValue
	}

	suggested, _, err := client.SendStructured[map[string]string](ctx, s.llm,
		schedulerPrompt(platforms, audience, topic),
		client.WithInstructions(schedulerInstructions),
	)
	if err != nil {
		err = fmt.Errorf("suggest schedule: %w", err)
		suggested = nil
	}

	byPlatform := make(map[Platform]string, len(suggested))
	for name, when := range suggested {
		byPlatform[Platform(strings.ToLower(strings.TrimSpace(name)))] = strings.TrimSpace(when)
	}

	schedules := make(map[Platform]string, len(platforms))
	status := StatusOK
	var missing []string
	for _, platform := range platforms {
		when := byPlatform[platform]
		if when == "" {
			when = BestTimeUnknown
			status = StatusFallback
			missing = append(missing, string(platform))
		}
		schedules[platform] = when
	}

	if err == nil && len(missing) > 0 {
		err = fmt.Errorf("no schedule for %s", strings.Join(missing, ", "))
	}
	recordStep(ctx, s.observer, StepScheduler, status, err)
	return schedules, status
}

// Step wraps Schedule as the terminal node. It writes Schedules.
func (s *Scheduler) Step() graph.Step[State] {
	return graph.StepFunc[State](func(ctx context.Context, state State) (graph.Update[State], error) {
		schedules, status := s.Schedule(ctx, state.Platforms, state.Metadata)
		return func(st *State) {
			st.Schedules = schedules
			st.Steps[StepScheduler] = status
		}, nil
	})
}
