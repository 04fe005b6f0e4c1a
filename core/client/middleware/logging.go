package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/sanhariharan/ViralFlow.ai/core/client"
	"github.com/sanhariharan/ViralFlow.ai/internal/utils"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits per request.
type LogLevel int

const (
	// LogLevelMinimal logs only the model name, total duration, and token counts.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds the message count and finish reason.
	LogLevelStandard

	// LogLevelVerbose adds the prompt, the output schema and the response
	// content, each truncated.
	// It writes user content to the logs; keep it out of production.
	LogLevelVerbose
)

// truncateLen is the maximum content length included in verbose log output.
const truncateLen = 500

// ParseLogLevel maps "minimal", "standard" or "verbose" to a LogLevel,
// defaulting to LogLevelStandard.
func ParseLogLevel(value string) LogLevel {
	switch value {
	case "minimal":
		return LogLevelMinimal
	case "verbose":
		return LogLevelVerbose
	default:
		return LogLevelStandard
	}
}

// NewLoggingMiddleware emits structured slog records around every provider call.
// A nil logger falls back to slog.Default().
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) client.MiddlewareConfig {
	if logger == nil {
		logger = slog.Default()
	}

	return client.MiddlewareConfig{
		Send: func(next client.SendFunc) client.SendFunc {
			return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
				logger.DebugContext(ctx, "llm send", buildRequestAttrs(request, level)...)

				start := time.Now()
				response, err := next(ctx, request)
				elapsed := time.Since(start)

				if err != nil {
					logger.WarnContext(ctx, "llm send failed",
						slog.String("model", request.Model),
						slog.Duration("duration", elapsed),
						slog.String("error", err.Error()),
					)
					return nil, err
				}

				logger.InfoContext(ctx, "llm send completed", buildResponseAttrs(request, response, elapsed, level)...)
				return response, nil
			}
		},
	}
}

func buildRequestAttrs(request ai.ChatRequest, level LogLevel) []any {
	attrs := []any{
		slog.String("model", request.Model),
	}

	if level >= LogLevelStandard {
		attrs = append(attrs, slog.Int("message_count", len(request.Messages)))
		if request.ResponseFormat != nil {
			attrs = append(attrs, slog.String("response_format", request.ResponseFormat.Type))
		}
	}

	if level >= LogLevelVerbose && len(request.Messages) > 0 {
		last := request.Messages[len(request.Messages)-1]
		attrs = append(attrs, slog.String("prompt", utils.TruncateString(last.Content, truncateLen)))
	}
	if level >= LogLevelVerbose && request.ResponseFormat != nil && request.ResponseFormat.OutputSchema != nil {
		schema := utils.JSONToString(request.ResponseFormat.OutputSchema)
		attrs = append(attrs, slog.String("output_schema", utils.TruncateString(schema, truncateLen)))
	}

	return attrs
}

func buildResponseAttrs(request ai.ChatRequest, response *ai.ChatResponse, elapsed time.Duration, level LogLevel) []any {
	model := response.Model
	if model == "" {
		model = request.Model
	}
	attrs := []any{
		slog.String("model", model),
		slog.Duration("duration", elapsed),
	}

	if response.Usage != nil {
		attrs = append(attrs,
			slog.Int("prompt_tokens", response.Usage.PromptTokens),
			slog.Int("completion_tokens", response.Usage.CompletionTokens),
			slog.Int("total_tokens", response.Usage.TotalTokens),
		)
	}

	if level >= LogLevelStandard && response.FinishReason != "" {
		attrs = append(attrs, slog.String("finish_reason", response.FinishReason))
	}

	if level >= LogLevelVerbose && response.Content != "" {
		attrs = append(attrs, slog.String("response_content", utils.TruncateString(response.Content, truncateLen)))
	}

	return attrs
}
