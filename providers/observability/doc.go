// Package observability defines the tracing, metrics and logging contracts
// shared by every ViralFlow component.
//
// [Provider] composes [Tracer], [Metrics] and [Logger] into one injectable
// dependency. Components never build their own logger: they receive a Provider
// at construction time, or pick one up from the request context through
// [ObserverFromContext]. The active [Span] travels the same way via
// [ContextWithSpan] and [SpanFromContext].
//
// Attribute keys and metric names live in semconv.go so the log records,
// span attributes and Prometheus series emitted by different packages line up.
//
// Implementations:
//   - slogobs: log/slog backed, spans logged at DEBUG, metrics logged at DEBUG
//   - promobs: wraps another Provider and records metrics in Prometheus
//   - [Nop]: discards everything
package observability
