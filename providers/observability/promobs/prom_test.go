package promobs

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

func findFamily(testCase *testing.T, registry *prometheus.Registry, name string) *dto.MetricFamily {
	testCase.Helper()
	families, err := registry.Gather()
	require.NoError(testCase, err)
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	testCase.Fatalf("metric family %s not found", name)
	return nil
}

func TestCounterRegistersAndAccumulates(testCase *testing.T) {
	registry := prometheus.NewRegistry()
	observer := New(observability.Nop(), registry)
	ctx := context.Background()

	observer.Counter("viralflow.pipeline.step.outcome").Add(ctx, 1,
		observability.String(observability.AttrStep, "hashtags"),
		observability.String(observability.AttrStepStatus, "ok"),
	)
	observer.Counter("viralflow.pipeline.step.outcome").Add(ctx, 2,
		observability.String(observability.AttrStep, "hashtags"),
		observability.String(observability.AttrStepStatus, "ok"),
	)
	observer.Counter("viralflow.pipeline.step.outcome").Add(ctx, 1,
		observability.String(observability.AttrStep, "visuals"),
		observability.String(observability.AttrStepStatus, "skipped"),
	)

	family := findFamily(testCase, registry, "viralflow_pipeline_step_outcome_total")
	require.Len(testCase, family.GetMetric(), 2)

	total := 0.0
	for _, metric := range family.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	assert.Equal(testCase, 4.0, total)
}

func TestHistogramObserves(testCase *testing.T) {
	registry := prometheus.NewRegistry()
	observer := New(nil, registry)

	observer.Histogram("viralflow.llm.duration").Record(context.Background(), 0.25,
		observability.String(observability.AttrLLMModel, "m"))

	family := findFamily(testCase, registry, "viralflow_llm_duration")
	require.Len(testCase, family.GetMetric(), 1)
	assert.Equal(testCase, uint64(1), family.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestUnknownLabelsAreDropped(testCase *testing.T) {
	registry := prometheus.NewRegistry()
	observer := New(nil, registry)
	ctx := context.Background()

	observer.Counter("calls").Add(ctx, 1, observability.String("kind", "a"))
	observer.Counter("calls").Add(ctx, 1, observability.String("other", "x"))

	family := findFamily(testCase, registry, "calls_total")
	assert.Len(testCase, family.GetMetric(), 2)
}

func TestSharedRegistryReusesCollectors(testCase *testing.T) {
	registry := prometheus.NewRegistry()
	first := New(nil, registry)
	second := New(nil, registry)

	first.Counter("shared").Add(context.Background(), 1)
	second.Counter("shared").Add(context.Background(), 1)

	family := findFamily(testCase, registry, "shared_total")
	require.Len(testCase, family.GetMetric(), 1)
	assert.Equal(testCase, 2.0, family.GetMetric()[0].GetCounter().GetValue())
}

func TestMetricName(testCase *testing.T) {
	assert.Equal(testCase, "viralflow_llm_requests", MetricName("viralflow.llm.requests"))
	assert.Equal(testCase, "_9lives", MetricName("9lives"))
}
