package client

import (
	"context"
	"time"

	"github.com/sanhariharan/ViralFlow.ai/providers/ai"
	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

func startCallSpan(ctx context.Context, observer observability.Provider, providerName string, request ai.ChatRequest) (context.Context, observability.Span) {
	if observer == nil {
		return ctx, nil
	}

	attrs := []observability.Attribute{
		observability.String(observability.AttrLLMProvider, providerName),
		observability.String(observability.AttrLLMModel, request.Model),
	}
	if request.GenerationConfig != nil && request.GenerationConfig.Temperature != nil {
		attrs = append(attrs, observability.Float64(observability.AttrLLMTemperature, float64(*request.GenerationConfig.Temperature)))
	}

	ctx, span := observer.StartSpan(ctx, observability.SpanLLMSend, attrs...)
	return observability.ContextWithSpan(ctx, span), span
}

func finishCall(
	ctx context.Context,
	observer observability.Provider,
	span observability.Span,
	providerName string,
	model string,
	response *ai.ChatResponse,
	err error,
	elapsed time.Duration,
) {
	if observer == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}

	observer.Counter(observability.MetricLLMRequests).Add(ctx, 1,
		observability.String(observability.AttrLLMProvider, providerName),
		observability.String(observability.AttrStatus, status),
	)
	observer.Histogram(observability.MetricLLMDuration).Record(ctx, elapsed.Seconds(),
		observability.String(observability.AttrLLMProvider, providerName),
	)

	if err != nil {
		observer.Debug(ctx, "llm call failed",
			observability.String(observability.AttrLLMModel, model),
			observability.Error(err),
			observability.Duration(observability.AttrDuration, elapsed),
		)
		if span != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, "llm call failed")
			span.End()
		}
		return
	}

	attrs := []observability.Attribute{
		observability.String(observability.AttrLLMModel, model),
		observability.Duration(observability.AttrDuration, elapsed),
	}
	if response != nil {
		attrs = append(attrs, observability.String(observability.AttrLLMFinishReason, response.FinishReason))
		if response.Usage != nil {
			attrs = append(attrs,
				observability.Int(observability.AttrLLMTokensPrompt, response.Usage.PromptTokens),
				observability.Int(observability.AttrLLMTokensCompletion, response.Usage.CompletionTokens),
				observability.Int(observability.AttrLLMTokensTotal, response.Usage.TotalTokens),
			)
		}
	}
	observer.Debug(ctx, "llm call completed", attrs...)

	if span != nil {
		span.SetAttributes(attrs...)
		span.SetStatus(observability.StatusOK, "llm call completed")
		span.End()
	}
}
