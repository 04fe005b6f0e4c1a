package pipeline

import "maps"

// Step names. They double as graph node ids and as keys of State.Steps.
const (
	StepUnderstanding = "understanding"
	StepHashtags      = "hashtags"
	StepVisuals       = "visuals"
	StepOptimizer     = "optimizer"
	StepScheduler     = "scheduler"

	adapterStepPrefix = "adapter."
)

// AdapterStep returns the step name of the adapter for platform.
func AdapterStep(platform Platform) string {
	return adapterStepPrefix + string(platform)
}

// StepStatus reports how a step produced its output.
type StepStatus string

const (
	StatusOK       StepStatus = "ok"
	StatusFallback StepStatus = "fallback"
	StatusSkipped  StepStatus = "skipped"
)

// Metadata is what Content Understanding extracts from the source content.
type Metadata struct {
	Intent   string   `json:"intent" jsonschema:"the goal of the post"`
	Audience string   `json:"audience" jsonschema:"the target audience"`
	Keywords []string `json:"keywords" jsonschema:"the top five keywords"`
	Topic    string   `json:"topic" jsonschema:"the main topic"`
	Tone     string   `json:"tone" jsonschema:"the detected or requested tone"`
	Summary  string   `json:"summary" jsonschema:"a brief summary of the content"`
}

func (m Metadata) clone() Metadata {
	m.Keywords = append([]string{}, m.Keywords...)
	return m
}

// State is the per-request record flowing through the graph. Each field has
// exactly one writing step per run; see the step files for ownership.
type State struct {
	BaseContent string
	Platforms   []Platform
	Tone        string

	Metadata        Metadata
	PlatformOutputs map[Platform]string
	Hashtags        map[Platform][]string
	Schedules       map[Platform]string
	Visuals         []string

	// Steps holds one entry per executed step, written by that step only.
	Steps map[string]StepStatus
}

// NewState returns a State with empty collections.
func NewState(baseContent string, platforms []Platform, tone string) State {
	return State{
		BaseContent:     baseContent,
		Platforms:       append([]Platform(nil), platforms...),
		Tone:            tone,
		Metadata:        Metadata{Keywords: []string{}},
		PlatformOutputs: make(map[Platform]string),
		Hashtags:        make(map[Platform][]string),
		Schedules:       make(map[Platform]string),
		Visuals:         []string{},
		Steps:           make(map[string]StepStatus),
	}
}

// Clone returns a deep copy, so that a step can never observe or cause a
// write through a shared map.
func (s State) Clone() State {
	hashtags := make(map[Platform][]string, len(s.Hashtags))
	for platform, tags := range s.Hashtags {
		hashtags[platform] = append([]string{}, tags...)
	}

	return State{
		BaseContent:     s.BaseContent,
		Platforms:       append([]Platform(nil), s.Platforms...),
		Tone:            s.Tone,
		Metadata:        s.Metadata.clone(),
		PlatformOutputs: cloneMap(s.PlatformOutputs),
		Hashtags:        hashtags,
		Schedules:       cloneMap(s.Schedules),
		Visuals:         append([]string{}, s.Visuals...),
		Steps:           cloneMap(s.Steps),
	}
}

func cloneMap[K comparable, V any](source map[K]V) map[K]V {
	cloned := make(map[K]V, len(source))
	maps.Copy(cloned, source)
	return cloned
}

// Response is the JSON body returned for a generation request. Maps are
// encoded with sorted keys and no field depends on time or request identity,
// so identical runs encode to identical bytes.
type Response struct {
	PlatformOutputs map[Platform]string   `json:"platform_outputs"`
	Hashtags        map[Platform][]string `json:"hashtags"`
	Schedules       map[Platform]string   `json:"schedules"`
	Visuals         []string              `json:"visuals"`
	Metadata        Metadata              `json:"metadata"`
	StepStatus      map[string]StepStatus `json:"step_status"`
}

// Response projects the final state onto the response shape.
func (s State) Response() Response {
	final := s.Clone()
	return Response{
		PlatformOutputs: final.PlatformOutputs,
		Hashtags:        final.Hashtags,
		Schedules:       final.Schedules,
		Visuals:         final.Visuals,
		Metadata:        final.Metadata,
		StepStatus:      final.Steps,
	}
}
