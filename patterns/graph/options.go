package graph

import (
	"time"

	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

// Option configures a Graph. Options are applied by NewGraphBuilder.
type Option func(*graphConfig)

// NodeOption configures a single node. Node options are applied by AddNode.
type NodeOption func(*nodeConfig)

type nodeConfig struct {
	timeout time.Duration
}

// --- Graph Options ---

// WithMaxConcurrency limits the number of nodes that run in parallel within
// the same topological level. Zero, the default, means no limit.
//
// Example:
//
//	graph.NewGraphBuilder[State](graph.WithMaxConcurrency(3))
func WithMaxConcurrency(maxConcurrency int) Option {
	return func(config *graphConfig) {
		config.maxConcurrency = maxConcurrency
	}
}

// WithExecutionTimeout bounds the whole execution. When it expires the
// context of every running node is canceled. Zero means no timeout.
func WithExecutionTimeout(timeout time.Duration) Option {
	return func(config *graphConfig) {
		config.executionTimeout = timeout
	}
}

// WithErrorStrategy sets the error handling strategy. The default is
// ErrorStrategyFailFast.
//
// Example:
//
//	graph.NewGraphBuilder[State](
//	    graph.WithErrorStrategy(graph.ErrorStrategyContinueOnError),
//	)
func WithErrorStrategy(strategy ErrorStrategy) Option {
	return func(config *graphConfig) {
		config.errorStrategy = strategy
	}
}

// WithObserver sets the observability provider. Without it the provider
// stored in the execution context is used, if any.
func WithObserver(observer observability.Provider) Option {
	return func(config *graphConfig) {
		config.observer = observer
	}
}

// --- Node Options ---

// WithNodeTimeout bounds one node. When it expires the node's context is
// canceled; the graph-level timeout still applies. Zero means no timeout.
//
// Example:
//
//	builder.AddNode("search", searchStep, graph.WithNodeTimeout(30*time.Second))
func WithNodeTimeout(timeout time.Duration) NodeOption {
	return func(config *nodeConfig) {
		config.timeout = timeout
	}
}
