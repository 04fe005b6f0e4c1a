package overview

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanhariharan/ViralFlow.ai/core/cost"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai"
)

func TestFromContext(testCase *testing.T) {
	assert.Nil(testCase, FromContext(context.Background()))

	overview := New()
	ctx := overview.ToContext(context.Background())
	assert.Same(testCase, overview, FromContext(ctx))
}

func TestRecordAccumulatesUsage(testCase *testing.T) {
	overview := New()

	overview.Record(&ai.ChatResponse{Usage: &ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}, nil)
	overview.Record(&ai.ChatResponse{Content: "no usage reported"}, nil)
	overview.Record(nil, errors.New("rate limited"))

	summary := overview.Summary()
	assert.Equal(testCase, 3, summary.Calls)
	assert.Equal(testCase, 1, summary.Failures)
	assert.Equal(testCase, ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, summary.Usage)
}

func TestRecordIsConcurrencySafe(testCase *testing.T) {
	overview := New()
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			overview.Record(&ai.ChatResponse{Usage: &ai.Usage{PromptTokens: 2, CompletionTokens: 1, TotalTokens: 3}}, nil)
		}()
	}
	wg.Wait()

	summary := overview.Summary()
	require.Equal(testCase, 50, summary.Calls)
	assert.Equal(testCase, 150, summary.Usage.TotalTokens)
}

func TestSummaryCost(testCase *testing.T) {
	summary := Summary{Usage: ai.Usage{PromptTokens: 1_000_000, CompletionTokens: 500_000}}

	got := summary.Cost(cost.ModelCost{InputCostPerMillion: 0.59, OutputCostPerMillion: 0.79})
	assert.InDelta(testCase, 0.59+0.395, got, 1e-9)
}
