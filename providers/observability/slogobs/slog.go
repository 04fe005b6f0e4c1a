package slogobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

// Observer implements observability.Provider using log/slog.
type Observer struct {
	logger *slog.Logger

	mu       sync.Mutex
	counters map[string]int64
}

var _ observability.Provider = (*Observer)(nil)

// New creates a slog-backed observer.
//
//	observer := slogobs.New(
//	    slogobs.WithFormat(slogobs.FormatJSON),
//	    slogobs.WithLevel(slog.LevelDebug),
//	)
func New(opts ...Option) *Observer {
	return &Observer{
		logger:   NewLogger(opts...),
		counters: make(map[string]int64),
	}
}

// Logger exposes the underlying slog.Logger for components that take one
// directly, such as the client logging middleware.
func (o *Observer) Logger() *slog.Logger {
	return o.logger
}

// --- TRACING ---

// StartSpan logs the span start at DEBUG and returns ctx with the span attached.
func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	span := &slogSpan{
		ctx:       ctx,
		name:      name,
		startTime: time.Now(),
		logger:    o.logger,
		attrs:     append([]observability.Attribute(nil), attrs...),
	}

	o.logger.LogAttrs(ctx, slog.LevelDebug, "span started", span.slogAttrs("span.start")...)
	return observability.ContextWithSpan(ctx, span), span
}

type slogSpan struct {
	ctx       context.Context
	name      string
	startTime time.Time
	logger    *slog.Logger

	mu    sync.Mutex
	attrs []observability.Attribute
}

func (s *slogSpan) slogAttrs(event string) []slog.Attr {
	logAttrs := []slog.Attr{
		slog.String("span", s.name),
		slog.String("event", event),
	}
	for _, attr := range s.attrs {
		logAttrs = append(logAttrs, slog.Any(attr.Key, attr.Value))
	}
	return logAttrs
}

// End logs the span end with its elapsed time and accumulated attributes.
func (s *slogSpan) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	logAttrs := append(s.slogAttrs("span.end"), slog.Duration(observability.AttrDuration, time.Since(s.startTime)))
	s.logger.LogAttrs(s.ctx, slog.LevelDebug, "span ended", logAttrs...)
}

func (s *slogSpan) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, attrs...)
}

func (s *slogSpan) SetStatus(code observability.StatusCode, description string) {
	status := "unset"
	switch code {
	case observability.StatusOK:
		status = "ok"
	case observability.StatusError:
		status = "error"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, observability.String(observability.AttrStatus, status))
	if description != "" {
		s.attrs = append(s.attrs, observability.String("status.description", description))
	}
}

func (s *slogSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, observability.Error(err))
}

func (s *slogSpan) AddEvent(name string, attrs ...observability.Attribute) {
	logAttrs := []slog.Attr{
		slog.String("span", s.name),
		slog.String("event", name),
	}
	for _, attr := range attrs {
		logAttrs = append(logAttrs, slog.Any(attr.Key, attr.Value))
	}
	s.logger.LogAttrs(s.ctx, slog.LevelDebug, "span event", logAttrs...)
}

// --- METRICS ---

// Counter returns a counter that logs each increment with its running total.
func (o *Observer) Counter(name string) observability.Counter {
	return &slogCounter{observer: o, name: name}
}

// Histogram returns a histogram that logs each observation.
func (o *Observer) Histogram(name string) observability.Histogram {
	return &slogHistogram{logger: o.logger, name: name}
}

// CounterValue reports the running total of the named counter.
func (o *Observer) CounterValue(name string) int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counters[name]
}

type slogCounter struct {
	observer *Observer
	name     string
}

func (c *slogCounter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	c.observer.mu.Lock()
	c.observer.counters[c.name] += value
	total := c.observer.counters[c.name]
	c.observer.mu.Unlock()

	logAttrs := []slog.Attr{
		slog.String("metric", c.name),
		slog.Int64("delta", value),
		slog.Int64("value", total),
	}
	for _, attr := range attrs {
		logAttrs = append(logAttrs, slog.Any(attr.Key, attr.Value))
	}
	c.observer.logger.LogAttrs(ctx, slog.LevelDebug, "counter", logAttrs...)
}

type slogHistogram struct {
	logger *slog.Logger
	name   string
}

func (h *slogHistogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	logAttrs := []slog.Attr{
		slog.String("metric", h.name),
		slog.Float64("value", value),
	}
	for _, attr := range attrs {
		logAttrs = append(logAttrs, slog.Any(attr.Key, attr.Value))
	}
	h.logger.LogAttrs(ctx, slog.LevelDebug, "histogram", logAttrs...)
}

// --- LOGGING ---

func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, LevelTrace, msg, attrs...)
}

func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelDebug, msg, attrs...)
}

func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelInfo, msg, attrs...)
}

func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelWarn, msg, attrs...)
}

func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelError, msg, attrs...)
}

func (o *Observer) log(ctx context.Context, level slog.Level, msg string, attrs ...observability.Attribute) {
	if !o.logger.Enabled(ctx, level) {
		return
	}
	logAttrs := make([]slog.Attr, 0, len(attrs)+1)
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok && requestID != "" {
		logAttrs = append(logAttrs, slog.String(observability.AttrRequestID, requestID))
	}
	for _, attr := range attrs {
		logAttrs = append(logAttrs, slog.Any(attr.Key, attr.Value))
	}
	o.logger.LogAttrs(ctx, level, msg, logAttrs...)
}

type requestIDKey struct{}

// ContextWithRequestID tags every record logged with ctx by an Observer.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}
