package graph

import (
	"context"
	"time"

	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

// Semantic conventions for graph observability attributes.
const (
	spanGraphExecute     = "graph.execute"
	spanGraphNodeExecute = "graph.node.execute"

	attrGraphNodeID           = "graph.node.id"
	attrGraphNodeLevel        = "graph.node.level"
	attrGraphNodeStatus       = "graph.node.status"
	attrGraphNodeDependencies = "graph.node.dependencies"
	attrGraphTotalNodes       = "graph.total_nodes"
	attrGraphTotalLevels      = "graph.total_levels"
	attrGraphErrorStrategy    = "graph.error_strategy"

	// MetricNodeDuration is the histogram of node execution time in seconds.
	MetricNodeDuration = "viralflow.graph.node.duration"

	// MetricNodeCount counts finished nodes by status.
	MetricNodeCount = "viralflow.graph.node.count"

	// MetricExecutionDuration is the histogram of whole-graph execution time.
	MetricExecutionDuration = "viralflow.graph.execution.duration"
)

// observeGraphStart opens the root span and returns a context carrying it and
// the observer, so steps and the clients they call report under it.
func (exec *execution[S]) observeGraphStart(ctx context.Context) context.Context {
	graph := exec.graph
	ctx, exec.rootSpan = exec.observer.StartSpan(ctx, spanGraphExecute,
		observability.Int(attrGraphTotalNodes, len(graph.nodes)),
		observability.Int(attrGraphTotalLevels, len(graph.levels)),
		observability.String(attrGraphErrorStrategy, string(graph.config.errorStrategy)),
	)
	ctx = observability.ContextWithSpan(ctx, exec.rootSpan)
	ctx = observability.ContextWithObserver(ctx, exec.observer)

	exec.observer.Debug(ctx, "graph execution started",
		observability.Int(attrGraphTotalNodes, len(graph.nodes)),
		observability.Int(attrGraphTotalLevels, len(graph.levels)),
	)
	return ctx
}

func (exec *execution[S]) observeGraphCompleted(ctx context.Context, totalDuration time.Duration, completedAll bool) {
	status := "completed"
	if !completedAll {
		status = "partial"
	}

	exec.observer.Histogram(MetricExecutionDuration).Record(ctx, totalDuration.Seconds(),
		observability.String(observability.AttrStatus, status),
	)
	exec.observer.Info(ctx, "graph execution completed",
		observability.String(observability.AttrStatus, status),
		observability.Duration(observability.AttrDuration, totalDuration),
	)

	exec.rootSpan.SetStatus(observability.StatusOK, "graph execution "+status)
	exec.rootSpan.End()
}

func (exec *execution[S]) observeGraphFailed(ctx context.Context, executionError error, totalDuration time.Duration) {
	exec.observer.Histogram(MetricExecutionDuration).Record(ctx, totalDuration.Seconds(),
		observability.String(observability.AttrStatus, "failed"),
	)
	exec.observer.Error(ctx, "graph execution failed",
		observability.Error(executionError),
		observability.Duration(observability.AttrDuration, totalDuration),
	)

	exec.rootSpan.RecordError(executionError)
	exec.rootSpan.SetStatus(observability.StatusError, "graph execution failed")
	exec.rootSpan.End()
}

// observeNodeStart opens a child span for one node.
func (exec *execution[S]) observeNodeStart(ctx context.Context, nodeID string, level int, dependencies []string) (context.Context, observability.Span) {
	ctx, nodeSpan := exec.observer.StartSpan(ctx, spanGraphNodeExecute,
		observability.String(attrGraphNodeID, nodeID),
		observability.Int(attrGraphNodeLevel, level),
		observability.StringSlice(attrGraphNodeDependencies, dependencies),
	)
	ctx = observability.ContextWithSpan(ctx, nodeSpan)

	exec.observer.Trace(ctx, "node execution started",
		observability.String(attrGraphNodeID, nodeID),
		observability.Int(attrGraphNodeLevel, level),
	)
	return ctx, nodeSpan
}

func (exec *execution[S]) observeNodeCompleted(ctx context.Context, nodeSpan observability.Span, nodeID string, duration time.Duration) {
	exec.recordNode(ctx, nodeID, NodeCompleted, duration)

	exec.observer.Debug(ctx, "node execution completed",
		observability.String(attrGraphNodeID, nodeID),
		observability.Duration(observability.AttrDuration, duration),
	)

	nodeSpan.SetAttributes(
		observability.String(attrGraphNodeStatus, string(NodeCompleted)),
		observability.Duration(observability.AttrDuration, duration),
	)
	nodeSpan.SetStatus(observability.StatusOK, "node completed")
	nodeSpan.End()
}

func (exec *execution[S]) observeNodeFailed(ctx context.Context, nodeSpan observability.Span, nodeID string, nodeError error, duration time.Duration) {
	exec.recordNode(ctx, nodeID, NodeFailed, duration)

	exec.observer.Error(ctx, "node execution failed",
		observability.String(attrGraphNodeID, nodeID),
		observability.Error(nodeError),
		observability.Duration(observability.AttrDuration, duration),
	)

	nodeSpan.RecordError(nodeError)
	nodeSpan.SetAttributes(
		observability.String(attrGraphNodeStatus, string(NodeFailed)),
		observability.Duration(observability.AttrDuration, duration),
	)
	nodeSpan.SetStatus(observability.StatusError, "node failed")
	nodeSpan.End()
}

func (exec *execution[S]) observeNodeSkipped(ctx context.Context, nodeID string, reason string) {
	exec.observer.Counter(MetricNodeCount).Add(ctx, 1,
		observability.String(attrGraphNodeID, nodeID),
		observability.String(attrGraphNodeStatus, string(NodeSkipped)),
	)
	exec.observer.Info(ctx, "node skipped",
		observability.String(attrGraphNodeID, nodeID),
		observability.String("graph.node.skip_reason", reason),
	)
}

func (exec *execution[S]) observeLevelStart(ctx context.Context, level int, nodeIDs []string) {
	exec.observer.Debug(ctx, "level execution started",
		observability.Int(attrGraphNodeLevel, level),
		observability.StringSlice("graph.level.nodes", nodeIDs),
	)
}

func (exec *execution[S]) recordNode(ctx context.Context, nodeID string, status NodeStatus, duration time.Duration) {
	exec.observer.Histogram(MetricNodeDuration).Record(ctx, duration.Seconds(),
		observability.String(attrGraphNodeID, nodeID),
	)
	exec.observer.Counter(MetricNodeCount).Add(ctx, 1,
		observability.String(attrGraphNodeID, nodeID),
		observability.String(attrGraphNodeStatus, string(status)),
	)
}
