package overview

import (
	"context"
	"sync"

	"github.com/sanhariharan/ViralFlow.ai/core/cost"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai"
)

type contextKey struct{}

// Overview aggregates the calls and token usage of one unit of work. It is
// safe for concurrent use.
type Overview struct {
	mu       sync.Mutex
	calls    int
	failures int
	usage    ai.Usage
}

// Summary is a point-in-time copy of an Overview.
type Summary struct {
	Calls    int      `json:"calls"`
	Failures int      `json:"failures"`
	Usage    ai.Usage `json:"usage"`
}

// New returns an empty Overview.
func New() *Overview {
	return &Overview{}
}

// ToContext stores the Overview in ctx.
func (overview *Overview) ToContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, overview)
}

// FromContext returns the Overview stored in ctx, or nil.
func FromContext(ctx context.Context) *Overview {
	overview, _ := ctx.Value(contextKey{}).(*Overview)
	return overview
}

// Record counts one call. Usage is taken from response when it reports any.
func (overview *Overview) Record(response *ai.ChatResponse, err error) {
	overview.mu.Lock()
	defer overview.mu.Unlock()

	overview.calls++
	if err != nil {
		overview.failures++
		return
	}
	if response == nil || response.Usage == nil {
		return
	}
	overview.usage.PromptTokens += response.Usage.PromptTokens
	overview.usage.CompletionTokens += response.Usage.CompletionTokens
	overview.usage.TotalTokens += response.Usage.TotalTokens
}

// Summary returns the current totals.
func (overview *Overview) Summary() Summary {
	overview.mu.Lock()
	defer overview.mu.Unlock()

	return Summary{
		Calls:    overview.calls,
		Failures: overview.failures,
		Usage:    overview.usage,
	}
}

// Cost prices the summarized usage.
func (summary Summary) Cost(price cost.ModelCost) float64 {
	return price.CalculateTotalCost(summary.Usage.PromptTokens, summary.Usage.CompletionTokens)
}
