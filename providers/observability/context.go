package observability

import "context"

type spanKey struct{}

type observerKey struct{}

// SpanFromContext extracts a Span from the context.
// Returns nil if no span is present.
func SpanFromContext(ctx context.Context) Span {
	if ctx == nil {
		return nil
	}
	span, _ := ctx.Value(spanKey{}).(Span)
	return span
}

// ContextWithSpan returns a new context with the given span attached.
func ContextWithSpan(ctx context.Context, span Span) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, spanKey{}, span)
}

// ObserverFromContext returns the Provider stored in ctx, or nil.
func ObserverFromContext(ctx context.Context) Provider {
	if ctx == nil {
		return nil
	}
	provider, _ := ctx.Value(observerKey{}).(Provider)
	return provider
}

// ContextWithObserver returns a copy of ctx carrying provider.
func ContextWithObserver(ctx context.Context, provider Provider) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, observerKey{}, provider)
}

// FromContextOr returns the Provider stored in ctx, falling back to
// fallback and finally to [Nop].
func FromContextOr(ctx context.Context, fallback Provider) Provider {
	if provider := ObserverFromContext(ctx); provider != nil {
		return provider
	}
	if fallback != nil {
		return fallback
	}
	return Nop()
}
