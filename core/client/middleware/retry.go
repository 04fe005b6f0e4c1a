package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/sanhariharan/ViralFlow.ai/core/client"
	"github.com/sanhariharan/ViralFlow.ai/internal/utils"
	"github.com/sanhariharan/ViralFlow.ai/providers/ai"
)

// ErrRetryExhausted wraps the last error once every attempt has failed.
var ErrRetryExhausted = errors.New("retry exhausted")

// RetryConfig tunes NewRetryMiddleware. Zero fields take the defaults.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	JitterFraction float64

	// Retryable decides whether err is worth another attempt.
	Retryable func(err error) bool
}

const (
	defaultInitialBackoff = time.Second
	defaultMaxBackoff     = 30 * time.Second
	defaultBackoffFactor  = 2.0
	defaultJitterFraction = 0.1
)

// retryableStatuses are the answers Groq and other OpenAI-compatible
// backends give for rate limits and transient overload.
var retryableStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// IsRetryable reports whether err carries a rate-limit or transient server
// status. Context errors are never retried.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *utils.HTTPError
	if errors.As(err, &httpErr) {
		for _, status := range retryableStatuses {
			if httpErr.StatusCode == status {
				return true
			}
		}
		return false
	}

	// Providers that decode the error body drop the typed error and keep
	// only "(status N)" in the message.
	message := err.Error()
	for _, status := range retryableStatuses {
		if strings.Contains(message, fmt.Sprintf("status %d", status)) {
			return true
		}
	}
	return false
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = defaultInitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxBackoff
	}
	if c.BackoffFactor < 1 {
		c.BackoffFactor = defaultBackoffFactor
	}
	if c.JitterFraction < 0 || c.JitterFraction > 1 {
		c.JitterFraction = defaultJitterFraction
	}
	if c.Retryable == nil {
		c.Retryable = IsRetryable
	}
	return c
}

// backoff returns the wait before retry number attempt (zero-based).
func (c RetryConfig) backoff(attempt int) time.Duration {
	wait := float64(c.InitialBackoff) * math.Pow(c.BackoffFactor, float64(attempt))
	if wait > float64(c.MaxBackoff) {
		wait = float64(c.MaxBackoff)
	}
	if c.JitterFraction > 0 {
		wait += wait * c.JitterFraction * (2*rand.Float64() - 1)
	}
	return time.Duration(wait)
}

// NewRetryMiddleware retries retryable provider failures with exponential
// backoff. MaxRetries <= 0 disables it. Waiting honours ctx cancellation.
func NewRetryMiddleware(config RetryConfig) client.MiddlewareConfig {
	config = config.withDefaults()

	return client.MiddlewareConfig{
		Send: func(next client.SendFunc) client.SendFunc {
			if config.MaxRetries <= 0 {
				return next
			}
			return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
				var lastErr error
				for attempt := 0; attempt <= config.MaxRetries; attempt++ {
					if attempt > 0 {
						timer := time.NewTimer(config.backoff(attempt - 1))
						select {
						case <-ctx.Done():
							timer.Stop()
							return nil, fmt.Errorf("%w: %w", ctx.Err(), lastErr)
						case <-timer.C:
						}
					}

					response, err := next(ctx, request)
					if err == nil {
						return response, nil
					}
					if !config.Retryable(err) {
						return nil, err
					}
					lastErr = err
				}
				return nil, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, config.MaxRetries, lastErr)
			}
		},
	}
}
