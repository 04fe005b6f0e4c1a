package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sanhariharan/ViralFlow.ai/core/client"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai"
	"github.com/sanhariharan/ViralFlow.ai/providers/tool/serper"
	"github.com/sanhariharan/ViralFlow.ai/providers/tool/tavily"
)

var errScripted = errors.New("scripted failure")

type reply func(prompt string) (string, error)

// scriptedLLM answers by step, recognised from the system instructions.
type scriptedLLM struct {
	mu      sync.Mutex
	replies map[string]reply
	calls   map[string]int
	prompts map[string][]string
}

func newScriptedLLM(replies map[string]reply) *scriptedLLM {
	return &scriptedLLM{
		replies: replies,
		calls:   make(map[string]int),
		prompts: make(map[string][]string),
	}
}

func (s *scriptedLLM) SendMessage(ctx context.Context, prompt string, opts ...client.SendMessageOption) (*ai.ChatResponse, error) {
	var request ai.ChatRequest
	for _, opt := range opts {
		opt(&request)
	}
	step := stepForInstructions(request.SystemPrompt)

	s.mu.Lock()
	s.calls[step]++
	s.prompts[step] = append(s.prompts[step], prompt)
	respond := s.replies[step]
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if respond == nil {
		return nil, errScripted
	}
	content, err := respond(prompt)
	if err != nil {
		return nil, err
	}
	return &ai.ChatResponse{Content: content, FinishReason: "stop"}, nil
}

func (s *scriptedLLM) callCount(step string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[step]
}

func (s *scriptedLLM) promptsFor(step string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts[step]...)
}

func (s *scriptedLLM) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, count := range s.calls {
		total += count
	}
	return total
}

func stepForInstructions(systemPrompt string) string {
	routes := []struct {
		instructions string
		step         string
	}{
		{understandingInstructions, StepUnderstanding},
		{adapterInstructions, "adapter"},
		{hashtagInstructions, StepHashtags},
		{visualsInstructions, StepVisuals},
		{optimizerInstructions, StepOptimizer},
		{schedulerInstructions, StepScheduler},
	}
	for _, route := range routes {
		if strings.HasPrefix(systemPrompt, route.instructions) {
			return route.step
		}
	}
	return "unknown"
}

// lineValue returns the text after prefix on the first line starting with it.
func lineValue(prompt, prefix string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if value, found := strings.CutPrefix(line, prefix); found {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func fixed(content string) reply {
	return func(string) (string, error) { return content, nil }
}

func failing() reply {
	return func(string) (string, error) { return "", errScripted }
}

const ecoMetadataJSON = `{"intent":"promote a product launch","audience":"eco-conscious consumers",` +
	`"keywords":["eco-friendly","water bottle","sustainability"],"topic":"Eco-friendly water bottle",` +
	`"tone":"Casual","summary":"A new reusable bottle made from recycled materials."}`

// ecoReplies is a well-behaved model for the eco bottle launch.
func ecoReplies() map[string]reply {
	return map[string]reply{
		StepUnderstanding: fixed("```json\n" + ecoMetadataJSON + "\n```"),
		"adapter": func(prompt string) (string, error) {
			return "Draft for " + lineValue(prompt, "Platform: "), nil
		},
		StepHashtags: fixed(`{"Twitter": ["#EcoBottle", "sustainable living"], "blog": ["#GreenLiving", "#greenliving"]}`),
		StepVisuals:  fixed("\"reusable eco water bottle aesthetic\"\n"),
		StepOptimizer: func(prompt string) (string, error) {
			return "Polished " + lineValue(prompt, "Platform: ") + " " + lineValue(prompt, "Hashtags to Integrate: "), nil
		},
		StepScheduler: fixed(`{"twitter": "Tuesday 10 AM"}`),
	}
}

type fakeWebSearch struct {
	mu     sync.Mutex
	delay  time.Duration
	err    error
	output tavily.SearchOutput
	inputs []tavily.SearchInput
}

func (f *fakeWebSearch) Search(ctx context.Context, input tavily.SearchInput) (tavily.SearchOutput, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return tavily.SearchOutput{}, ctx.Err()
		}
	}
	if f.err != nil {
		return tavily.SearchOutput{}, f.err
	}
	return f.output, nil
}

type fakeImageSearch struct {
	mu     sync.Mutex
	err    error
	images []serper.Image
	inputs []serper.ImagesInput
}

func (f *fakeImageSearch) Images(_ context.Context, input serper.ImagesInput) (serper.ImagesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return serper.ImagesOutput{}, f.err
	}
	return serper.ImagesOutput{Images: f.images}, nil
}

func imageHits(count int) []serper.Image {
	images := make([]serper.Image, count)
	for index := range images {
		images[index] = serper.Image{
			Title:    "bottle",
			ImageURL: "https://images.example.com/bottle-" + string(rune('a'+index)) + ".jpg",
		}
	}
	return images
}

var trendResults = tavily.SearchOutput{
	Query:   "trending hashtags for Eco-friendly water bottle",
	Summary: "Found 1 results:\n\n1. Eco trends\n   #EcoBottle is trending",
	Results: []tavily.SearchResult{{Title: "Eco trends", URL: "https://trends.example.com", Content: "#EcoBottle is trending"}},
}
