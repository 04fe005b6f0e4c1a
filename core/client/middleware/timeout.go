package middleware

import (
	"context"
	"time"

	"github.com/sanhariharan/ViralFlow.ai/core/client"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai"
)

// NewTimeoutMiddleware enforces a per-request deadline. A non-positive timeout
// disables the middleware. A shorter deadline already on the caller's context
// still wins.
func NewTimeoutMiddleware(timeout time.Duration) client.MiddlewareConfig {
	return client.MiddlewareConfig{
		Send: func(next client.SendFunc) client.SendFunc {
			if timeout <= 0 {
				return next
			}
			return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
				ctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()

				return next(ctx, request)
			}
		},
	}
}
