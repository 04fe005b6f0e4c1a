package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanhariharan/ViralFlow.ai/core/client"
	"github.com/sanhariharan/ViralFlow.ai/core/client/middleware"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability/slogobs"
	"github.com/sanhariharan/ViralFlow.ai/providers/tool/serper"
)

const ecoContent = "Launching our new eco-friendly water bottle! Made from 100% recycled materials. Keeps drinks cold for 24h."

func ecoRequest() Request {
	return Request{BaseContent: ecoContent, Platforms: []string{"Twitter", "blog"}, Tone: "Casual"}
}

func newTestWorkflow(testCase *testing.T, deps Dependencies) *Workflow {
	testCase.Helper()
	workflow, err := NewWorkflow(deps)
	require.NoError(testCase, err)
	return workflow
}

func TestNewWorkflowRequiresLLM(testCase *testing.T) {
	_, err := NewWorkflow(Dependencies{})
	assert.ErrorIs(testCase, err, ErrMissingLLM)

	var typedNil *scriptedLLM
	_, err = NewWorkflow(Dependencies{LLM: typedNil})
	assert.ErrorIs(testCase, err, ErrMissingLLM)
}

func TestWorkflowGraphShape(testCase *testing.T) {
	workflow := newTestWorkflow(testCase, Dependencies{LLM: newScriptedLLM(nil)})

	pipelineGraph, err := workflow.Graph([]Platform{Twitter, Blog})
	require.NoError(testCase, err)

	assert.Equal(testCase, [][]string{
		{StepUnderstanding},
		{"adapter.twitter", "adapter.blog", StepHashtags, StepVisuals},
		{StepOptimizer},
		{StepScheduler},
	}, pipelineGraph.Levels())
	assert.ElementsMatch(testCase,
		[]string{"adapter.twitter", "adapter.blog", StepHashtags, StepVisuals},
		pipelineGraph.Dependencies(StepOptimizer),
	)
}

func TestGenerateEcoBottleLaunch(testCase *testing.T) {
	llm := newScriptedLLM(ecoReplies())
	search := &fakeWebSearch{output: trendResults}
	images := &fakeImageSearch{images: imageHits(6)}
	workflow := newTestWorkflow(testCase, Dependencies{
		LLM: llm, WebSearch: search, ImageSearch: images,
		SearchResults: 5, ImageCount: 4,
	})

	response, err := workflow.Generate(context.Background(), ecoRequest())
	require.NoError(testCase, err)

	assert.Equal(testCase, map[Platform]string{
		Twitter: "Polished twitter #EcoBottle #sustainableliving",
		Blog:    "Polished blog #GreenLiving",
	}, response.PlatformOutputs)
	assert.Equal(testCase, map[Platform][]string{
		Twitter: {"#EcoBottle", "#sustainableliving"},
		Blog:    {"#GreenLiving"},
	}, response.Hashtags)
	assert.Equal(testCase, map[Platform]string{
		Twitter: "Tuesday 10 AM",
		Blog:    BestTimeUnknown,
	}, response.Schedules)
	assert.LessOrEqual(testCase, len(response.Visuals), 4)
	assert.Len(testCase, response.Visuals, 4)
	assert.Equal(testCase, "Eco-friendly water bottle", response.Metadata.Topic)
	assert.Equal(testCase, "Casual", response.Metadata.Tone)

	assert.Equal(testCase, map[string]StepStatus{
		StepUnderstanding: StatusOK,
		"adapter.twitter": StatusOK,
		"adapter.blog":    StatusOK,
		StepHashtags:      StatusOK,
		StepVisuals:       StatusOK,
		StepOptimizer:     StatusOK,
		StepScheduler:     StatusFallback,
	}, response.StepStatus)

	assert.Equal(testCase, 2, llm.callCount("adapter"))
	assert.Equal(testCase, 2, llm.callCount(StepOptimizer))
	assert.Equal(testCase, 1, llm.callCount(StepScheduler))
}

func TestGenerateOnlyRequestedPlatforms(testCase *testing.T) {
	llm := newScriptedLLM(ecoReplies())
	workflow := newTestWorkflow(testCase, Dependencies{LLM: llm})

	response, err := workflow.Generate(context.Background(), Request{
		BaseContent: ecoContent, Platforms: []string{"linkedin"}, Tone: "Professional",
	})
	require.NoError(testCase, err)

	assert.Len(testCase, response.PlatformOutputs, 1)
	assert.Contains(testCase, response.PlatformOutputs, LinkedIn)
	assert.Equal(testCase, map[Platform][]string{LinkedIn: {}}, response.Hashtags)
	assert.Equal(testCase, map[Platform]string{LinkedIn: BestTimeUnknown}, response.Schedules)
	assert.Equal(testCase, []string{}, response.Visuals)
	assert.Equal(testCase, StatusSkipped, response.StepStatus[StepVisuals])
	assert.Zero(testCase, llm.callCount(StepVisuals))
}

func TestGenerateWithFailingModelIsDeterministic(testCase *testing.T) {
	platforms := []string{"twitter", "instagram", "youtube"}
	run := func() *Response {
		workflow := newTestWorkflow(testCase, Dependencies{
			LLM:         newScriptedLLM(nil),
			ImageSearch: &fakeImageSearch{images: imageHits(4)},
		})
		response, err := workflow.Generate(context.Background(), Request{
			BaseContent: ecoContent, Platforms: platforms, Tone: "Casual",
		})
		require.NoError(testCase, err)
		return response
	}

	first := run()
	second := run()
	assert.Equal(testCase, first, second)

	assert.Equal(testCase, FallbackMetadata(ecoContent, "Casual"), first.Metadata)
	assert.Empty(testCase, first.PlatformOutputs)
	assert.Equal(testCase, map[Platform][]string{Twitter: {}, Instagram: {}, YouTube: {}}, first.Hashtags)
	assert.Equal(testCase, map[Platform]string{
		Twitter: BestTimeUnknown, Instagram: BestTimeUnknown, YouTube: BestTimeUnknown,
	}, first.Schedules)
	assert.Equal(testCase, []string{}, first.Visuals)
	for step, status := range first.StepStatus {
		if step == StepOptimizer {
			assert.Equal(testCase, StatusOK, status, "nothing to polish")
			continue
		}
		assert.Equal(testCase, StatusFallback, status, step)
	}
}

func TestOptimizerWaitsForSlowHashtagResearch(testCase *testing.T) {
	llm := newScriptedLLM(ecoReplies())
	search := &fakeWebSearch{output: trendResults, delay: 150 * time.Millisecond}
	workflow := newTestWorkflow(testCase, Dependencies{LLM: llm, WebSearch: search})

	response, err := workflow.Generate(context.Background(), ecoRequest())
	require.NoError(testCase, err)

	for _, prompt := range llm.promptsFor(StepOptimizer) {
		assert.NotEmpty(testCase, lineValue(prompt, "Hashtags to Integrate: "))
	}
	assert.Equal(testCase, "Polished twitter #EcoBottle #sustainableliving", response.PlatformOutputs[Twitter])
}

func TestGenerateIsIdempotent(testCase *testing.T) {
	encode := func() []byte {
		workflow := newTestWorkflow(testCase, Dependencies{
			LLM:         newScriptedLLM(ecoReplies()),
			WebSearch:   &fakeWebSearch{output: trendResults},
			ImageSearch: &fakeImageSearch{images: imageHits(5)},
		})
		response, err := workflow.Generate(context.Background(), ecoRequest())
		require.NoError(testCase, err)
		body, err := json.Marshal(response)
		require.NoError(testCase, err)
		return body
	}

	assert.Equal(testCase, string(encode()), string(encode()))
}

func TestGenerateRejectsInvalidInput(testCase *testing.T) {
	workflow := newTestWorkflow(testCase, Dependencies{LLM: newScriptedLLM(ecoReplies())})

	_, err := workflow.Generate(context.Background(), Request{BaseContent: "x", Platforms: []string{"friendster"}})
	assert.ErrorIs(testCase, err, ErrUnknownPlatform)

	_, err = workflow.Generate(context.Background(), Request{BaseContent: "x"})
	assert.ErrorIs(testCase, err, ErrNoPlatforms)

	_, err = workflow.Generate(context.Background(), Request{BaseContent: "  ", Platforms: []string{"blog"}})
	assert.ErrorIs(testCase, err, ErrEmptyContent)
}

// hangingProvider never answers; calls end only when their context does.
type hangingProvider struct{}

func (hangingProvider) SendMessage(ctx context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (hangingProvider) Name() string { return "hanging" }

func TestGenerateFallsBackWhenPipelineDeadlinePasses(testCase *testing.T) {
	// Same ratio as the defaults: a 60s model timeout inside a 180s pipeline.
	llm, err := client.New(hangingProvider{},
		client.WithMiddleware(middleware.NewTimeoutMiddleware(60*time.Millisecond)),
	)
	require.NoError(testCase, err)
	workflow := newTestWorkflow(testCase, Dependencies{LLM: llm, Timeout: 180 * time.Millisecond})

	start := time.Now()
	response, err := workflow.Generate(context.Background(), ecoRequest())
	require.NoError(testCase, err)
	require.NotNil(testCase, response)
	assert.Less(testCase, time.Since(start), 2*time.Second)

	degraded := newTestWorkflow(testCase, Dependencies{LLM: newScriptedLLM(map[string]reply{})})
	expected, err := degraded.Generate(context.Background(), ecoRequest())
	require.NoError(testCase, err)

	assert.Equal(testCase, expected, response)
	assert.Equal(testCase, StatusFallback, response.StepStatus[StepUnderstanding])
	assert.Equal(testCase, StatusFallback, response.StepStatus[StepScheduler])
	assert.Equal(testCase, BestTimeUnknown, response.Schedules[Twitter])
}

func TestGenerateKeepsStepsFinishedBeforeDeadline(testCase *testing.T) {
	replies := ecoReplies()
	replies[StepOptimizer] = func(string) (string, error) {
		time.Sleep(80 * time.Millisecond)
		return "too late", nil
	}
	workflow := newTestWorkflow(testCase, Dependencies{LLM: newScriptedLLM(replies), Timeout: 40 * time.Millisecond})

	response, err := workflow.Generate(context.Background(), ecoRequest())
	require.NoError(testCase, err)

	assert.Equal(testCase, StatusOK, response.StepStatus[StepUnderstanding])
	assert.Equal(testCase, "Eco-friendly water bottle", response.Metadata.Topic)
	assert.Equal(testCase, StatusFallback, response.StepStatus[StepScheduler])
	assert.Equal(testCase, BestTimeUnknown, response.Schedules[Twitter])
}

func TestGenerateStopsWhenCallerCancels(testCase *testing.T) {
	workflow := newTestWorkflow(testCase, Dependencies{LLM: newScriptedLLM(ecoReplies())})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	response, err := workflow.Generate(ctx, ecoRequest())
	assert.Nil(testCase, response)
	assert.ErrorIs(testCase, err, context.Canceled)
}

func TestRefreshVisualsRunsOnlyVisuals(testCase *testing.T) {
	llm := newScriptedLLM(ecoReplies())
	images := &fakeImageSearch{images: imageHits(3)}
	workflow := newTestWorkflow(testCase, Dependencies{LLM: llm, ImageSearch: images})

	urls := workflow.RefreshVisuals(context.Background(), "Eco-friendly water bottle", []string{"eco"})

	assert.Len(testCase, urls, 3)
	assert.Equal(testCase, 1, llm.totalCalls())
	assert.Equal(testCase, 1, llm.callCount(StepVisuals))
}

func TestGenerateRecordsMetrics(testCase *testing.T) {
	observer := slogobs.New(slogobs.WithOutput(io.Discard))
	workflow := newTestWorkflow(testCase, Dependencies{LLM: newScriptedLLM(ecoReplies()), Observer: observer})

	_, err := workflow.Generate(context.Background(), ecoRequest())
	require.NoError(testCase, err)

	assert.Equal(testCase, int64(1), observer.CounterValue(observability.MetricRequests))
	assert.Equal(testCase, int64(7), observer.CounterValue(observability.MetricStepOutcome))
}

// scriptedProvider plays the model behind a real client.Client, so the
// schema attachment and loose JSON parsing run as in production.
type scriptedProvider struct {
	llm *scriptedLLM
}

func (p scriptedProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if request.ResponseFormat != nil && request.ResponseFormat.OutputSchema != nil &&
		!strings.Contains(request.SystemPrompt, "JSON Schema") {
		return nil, errors.New("schema was not attached to the system prompt")
	}
	return p.llm.SendMessage(ctx, request.Messages[0].Content, client.WithInstructions(request.SystemPrompt))
}

func (scriptedProvider) Name() string { return "scripted" }

func TestGenerateThroughClient(testCase *testing.T) {
	llm := newScriptedLLM(ecoReplies())
	llmClient, err := client.New(scriptedProvider{llm: llm}, client.WithModel("llama-3.3-70b-versatile"))
	require.NoError(testCase, err)

	images := &fakeImageSearch{images: imageHits(4)}
	workflow := newTestWorkflow(testCase, Dependencies{LLM: llmClient, ImageSearch: images})

	response, err := workflow.Generate(context.Background(), ecoRequest())
	require.NoError(testCase, err)

	assert.Equal(testCase, StatusOK, response.StepStatus[StepUnderstanding])
	assert.Equal(testCase, []string{"eco-friendly", "water bottle", "sustainability"}, response.Metadata.Keywords)
	assert.Equal(testCase, []string{"#EcoBottle", "#sustainableliving"}, response.Hashtags[Twitter])
	assert.Equal(testCase, "Tuesday 10 AM", response.Schedules[Twitter])
	assert.Len(testCase, response.Visuals, 4)
	assert.Equal(testCase, []serper.ImagesInput{{Query: "reusable eco water bottle aesthetic", Num: 4}}, images.inputs)
}
