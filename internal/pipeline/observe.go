package pipeline

import (
	"context"

	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

// recordStep counts the outcome of a step and logs fallbacks at WARN.
func recordStep(ctx context.Context, fallback observability.Provider, step string, status StepStatus, cause error, attrs ...observability.Attribute) {
	observer := observability.FromContextOr(ctx, fallback)

	observer.Counter(observability.MetricStepOutcome).Add(ctx, 1,
		observability.String(observability.AttrStep, step),
		observability.String(observability.AttrStepStatus, string(status)),
	)

	attrs = append([]observability.Attribute{
		observability.String(observability.AttrStep, step),
		observability.String(observability.AttrStepStatus, string(status)),
	}, attrs...)

	switch status {
	case StatusFallback:
		if cause != nil {
			attrs = append(attrs, observability.Error(cause))
		}
		observer.Warn(ctx, "step fell back", attrs...)
	case StatusSkipped:
		observer.Info(ctx, "step skipped", attrs...)
	default:
		observer.Debug(ctx, "step completed", attrs...)
	}
}
