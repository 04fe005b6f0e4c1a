package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/sanhariharan/ViralFlow.ai/core/client"
	"github.com/sanhariharan/ViralFlow.ai/core/cost"
	"github.com/sanhariharan/ViralFlow.ai/core/overview"
	"github.com/sanhariharan/ViralFlow.ai/patterns/graph"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
	"github.com/sanhariharan/ViralFlow.ai/providers/tool/serper"
	"github.com/sanhariharan/ViralFlow.ai/providers/tool/tavily"
)

var (
	// ErrMissingLLM is returned by NewWorkflow without a language model.
	ErrMissingLLM = errors.New("pipeline: language model is required")

	// ErrEmptyContent is returned by Generate for blank source content.
	ErrEmptyContent = errors.New("base_content must not be empty")
)

// WebSearcher is the web search used by hashtag research.
type WebSearcher interface {
	Search(ctx context.Context, input tavily.SearchInput) (tavily.SearchOutput, error)
}

// ImageSearcher is the image search used by visuals research.
type ImageSearcher interface {
	Images(ctx context.Context, input serper.ImagesInput) (serper.ImagesOutput, error)
}

// Dependencies are the collaborators shared by every request. WebSearch and
// ImageSearch are optional.
type Dependencies struct {
	LLM         client.Sender
	WebSearch   WebSearcher
	ImageSearch ImageSearcher
	Observer    observability.Provider

	// SearchResults is the number of web results requested for hashtags.
	SearchResults int
	// ImageCount is the number of image URLs kept.
	ImageCount int
	// MaxConcurrency bounds the parallel steps of one level. Zero means
	// unbounded.
	MaxConcurrency int
	// Timeout bounds the steps of one generation. Steps still running at the
	// deadline, and every step after it, fall back; the response is still
	// returned. Zero means no timeout.
	Timeout time.Duration
	// Pricing estimates the model cost logged per generation.
	Pricing cost.ModelCost
}

// Request is one generation request.
type Request struct {
	BaseContent string   `json:"base_content"`
	Platforms   []string `json:"platforms"`
	Tone        string   `json:"tone"`
}

// Workflow runs the content pipeline. It holds no per-request state and is
// safe for concurrent use.
type Workflow struct {
	understanding *Understanding
	adapter       *Adapter
	hashtags      *HashtagResearch
	visuals       *Visuals
	optimizer     *Optimizer
	scheduler     *Scheduler

	observer       observability.Provider
	maxConcurrency int
	timeout        time.Duration
	pricing        cost.ModelCost
}

// NewWorkflow wires the pipeline components.
func NewWorkflow(deps Dependencies) (*Workflow, error) {
	if !present(deps.LLM) {
		return nil, ErrMissingLLM
	}

	var search WebSearcher
	if present(deps.WebSearch) {
		search = deps.WebSearch
	}
	var images ImageSearcher
	if present(deps.ImageSearch) {
		images = deps.ImageSearch
	}

	return &Workflow{
		understanding:  NewUnderstanding(deps.LLM, deps.Observer),
		adapter:        NewAdapter(deps.LLM, deps.Observer),
		hashtags:       NewHashtagResearch(deps.LLM, search, deps.SearchResults, deps.Observer),
		visuals:        NewVisuals(deps.LLM, images, deps.ImageCount, deps.Observer),
		optimizer:      NewOptimizer(deps.LLM, deps.MaxConcurrency, deps.Observer),
		scheduler:      NewScheduler(deps.LLM, deps.Observer),
		observer:       deps.Observer,
		maxConcurrency: deps.MaxConcurrency,
		timeout:        deps.Timeout,
		pricing:        deps.Pricing,
	}, nil
}

// present reports whether value holds a usable implementation. A typed nil
// pointer in an interface counts as absent.
func present(value any) bool {
	if value == nil {
		return false
	}
	reflected := reflect.ValueOf(value)
	switch reflected.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Slice, reflect.Chan:
		return !reflected.IsNil()
	}
	return true
}

// Graph builds the pipeline graph for platforms:
//
//	understanding -> {adapter.<p>..., hashtags, visuals} -> optimizer -> scheduler
func (w *Workflow) Graph(platforms []Platform) (*graph.Graph[State], error) {
	return w.buildGraph(platforms, time.Time{})
}

// buildGraph is Graph with every step bounded by deadline. A zero deadline
// leaves the steps unbounded.
func (w *Workflow) buildGraph(platforms []Platform, deadline time.Time) (*graph.Graph[State], error) {
	builder := graph.NewGraphBuilder[State](
		graph.WithMaxConcurrency(w.maxConcurrency),
		graph.WithObserver(w.observer),
	)
	add := func(id string, step graph.Step[State]) {
		builder.AddNode(id, boundedBy(deadline, step))
	}

	add(StepUnderstanding, w.understanding.Step())

	research := make([]string, 0, len(platforms)+2)
	for _, platform := range platforms {
		add(AdapterStep(platform), w.adapter.Step(platform))
		research = append(research, AdapterStep(platform))
	}
	add(StepHashtags, w.hashtags.Step())
	add(StepVisuals, w.visuals.Step())
	research = append(research, StepHashtags, StepVisuals)

	add(StepOptimizer, w.optimizer.Step())
	add(StepScheduler, w.scheduler.Step())

	builder.AddFanOut(StepUnderstanding, research...)
	builder.AddFanIn(research, StepOptimizer)
	builder.AddEdge(StepOptimizer, StepScheduler)

	return builder.Build()
}

// boundedBy runs step under deadline. Past it, the step's collaborator calls
// fail at once and the step takes its fallback.
func boundedBy(deadline time.Time, step graph.Step[State]) graph.Step[State] {
	if deadline.IsZero() {
		return step
	}
	return graph.StepFunc[State](func(ctx context.Context, state State) (graph.Update[State], error) {
		ctx, cancel := context.WithDeadline(ctx, deadline)
		defer cancel()
		return step.Run(ctx, state)
	})
}

// Generate runs the whole pipeline for request. Step failures, including
// the pipeline deadline, degrade to fallbacks recorded in the response; only
// invalid input, a graph failure or cancellation of ctx return an error.
func (w *Workflow) Generate(ctx context.Context, request Request) (*Response, error) {
	start := time.Now()

	platforms, err := ParsePlatforms(request.Platforms)
	if err != nil {
		return nil, err
	}
	content, err := NormalizeContent(request.BaseContent)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, ErrEmptyContent
	}

	var deadline time.Time
	if w.timeout > 0 {
		deadline = start.Add(w.timeout)
	}
	pipelineGraph, err := w.buildGraph(platforms, deadline)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	tally := overview.New()
	ctx = tally.ToContext(ctx)

	result, err := pipelineGraph.Execute(ctx, NewState(content, platforms, request.Tone))
	if err == nil && ctx.Err() != nil {
		err = fmt.Errorf("pipeline interrupted: %w", ctx.Err())
	}
	if err == nil && !deadline.IsZero() && time.Now().After(deadline) {
		observability.FromContextOr(ctx, w.observer).Warn(ctx, "pipeline deadline reached, late steps fell back",
			observability.Duration(observability.AttrDuration, w.timeout),
		)
	}
	w.recordRequest(ctx, platforms, tally.Summary(), err, time.Since(start))
	if err != nil {
		return nil, err
	}

	response := result.State.Response()
	return &response, nil
}

// RefreshVisuals runs visuals research on its own.
func (w *Workflow) RefreshVisuals(ctx context.Context, topic string, keywords []string) []string {
	urls, _ := w.visuals.Find(ctx, topic, keywords)
	return urls
}

func (w *Workflow) recordRequest(ctx context.Context, platforms []Platform, usage overview.Summary, err error, duration time.Duration) {
	observer := observability.FromContextOr(ctx, w.observer)

	status := "success"
	if err != nil {
		status = "error"
	}
	observer.Counter(observability.MetricRequests).Add(ctx, 1,
		observability.String(observability.AttrStatus, status),
	)
	observer.Histogram(observability.MetricDuration).Record(ctx, duration.Seconds(),
		observability.String(observability.AttrStatus, status),
	)

	attrs := []observability.Attribute{
		observability.StringSlice(observability.AttrPlatforms, platformNames(platforms)),
		observability.Duration(observability.AttrDuration, duration),
		observability.Int(observability.AttrLLMCalls, usage.Calls),
		observability.Int(observability.AttrLLMTokensTotal, usage.Usage.TotalTokens),
	}
	if !w.pricing.IsZero() {
		attrs = append(attrs, observability.Float64(observability.AttrLLMCostUSD, usage.Cost(w.pricing)))
	}
	if err != nil {
		observer.Error(ctx, "generation failed", append(attrs, observability.Error(err))...)
		return
	}
	observer.Info(ctx, "generation completed", attrs...)
}
