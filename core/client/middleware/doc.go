// Package middleware provides the built-in client middlewares. Each New*
// function returns a [client.MiddlewareConfig] for [client.WithMiddleware].
//
//   - [NewTimeoutMiddleware]: bounds every provider call with context.WithTimeout,
//     so a stalled model surfaces as context.DeadlineExceeded instead of blocking.
//   - [NewRetryMiddleware]: retries rate-limited and transient 5xx failures with
//     jittered exponential backoff.
//   - [NewLoggingMiddleware]: emits slog records before and after each call,
//     at three verbosity levels.
//
// Usage:
//
//	c, err := client.New(provider,
//	    client.WithMiddleware(
//	        middleware.NewTimeoutMiddleware(60*time.Second),
//	        middleware.NewLoggingMiddleware(logger, middleware.LogLevelStandard),
//	    ),
//	)
//
// Middlewares execute outermost-first, so above a request travels
// Timeout, then Logging, then the provider.
package middleware
