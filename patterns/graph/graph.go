package graph

import (
	"context"
	"errors"
	"time"

	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

var (
	// ErrEmptyGraph is returned by Build when no node was added.
	ErrEmptyGraph = errors.New("graph: graph must contain at least one node")

	// ErrEmptyNodeID is returned by Build when a node or edge uses an empty id.
	ErrEmptyNodeID = errors.New("graph: node id must not be empty")

	// ErrNilStep is returned by Build when a node has no step.
	ErrNilStep = errors.New("graph: step must not be nil")

	// ErrDuplicateNode is returned by Build when two nodes share an id.
	ErrDuplicateNode = errors.New("graph: duplicate node id")

	// ErrDuplicateEdge is returned by Build when the same edge is added twice.
	ErrDuplicateEdge = errors.New("graph: duplicate edge")

	// ErrNodeNotFound is returned by Build when an edge names an unknown node.
	ErrNodeNotFound = errors.New("graph: node not found")

	// ErrSelfLoop is returned by Build for an edge from a node to itself.
	ErrSelfLoop = errors.New("graph: self loop")

	// ErrCycleDetected is returned by Build when the edges form a cycle.
	ErrCycleDetected = errors.New("graph: cycle detected")

	// ErrNodePanic wraps a panic raised inside a step.
	ErrNodePanic = errors.New("graph: step panicked")
)

// NodeStatus represents the lifecycle status of a node during graph execution.
type NodeStatus string

const (
	// NodePending indicates the node has not started execution yet.
	NodePending NodeStatus = "pending"

	// NodeRunning indicates the node is currently executing.
	NodeRunning NodeStatus = "running"

	// NodeCompleted indicates the node has finished execution successfully.
	NodeCompleted NodeStatus = "completed"

	// NodeFailed indicates the step returned an error.
	NodeFailed NodeStatus = "failed"

	// NodeSkipped indicates the node never ran because a dependency failed or
	// was skipped, or because its level was canceled.
	NodeSkipped NodeStatus = "skipped"
)

// ErrorStrategy defines how the graph handles errors when nodes fail during
// parallel execution within the same level.
type ErrorStrategy string

const (
	// ErrorStrategyFailFast cancels the running level and stops graph
	// execution as soon as any node fails. This is the default strategy.
	ErrorStrategyFailFast ErrorStrategy = "fail_fast"

	// ErrorStrategyContinueOnError lets the other nodes finish when one
	// fails. Nodes that depend on the failed node are skipped.
	ErrorStrategyContinueOnError ErrorStrategy = "continue_on_error"
)

// Update mutates the state. It is applied by the executor after the level of
// the node that produced it has joined. A nil Update is a no-op.
type Update[S any] func(state *S)

// Step is the processing logic of one node. It must not retain or mutate
// the state it receives.
type Step[S any] interface {
	Run(ctx context.Context, state S) (Update[S], error)
}

// StepFunc adapts an ordinary function to Step.
type StepFunc[S any] func(ctx context.Context, state S) (Update[S], error)

// Run calls f.
func (f StepFunc[S]) Run(ctx context.Context, state S) (Update[S], error) {
	return f(ctx, state)
}

// Cloner is implemented by state types that hold reference fields (maps,
// slices). Each node then receives Clone() instead of a shallow copy.
type Cloner[S any] interface {
	Clone() S
}

// NodeReport describes what happened to one node during an execution.
type NodeReport struct {
	ID       string
	Level    int
	Status   NodeStatus
	Duration time.Duration
	Err      error
}

// Result is the outcome of Execute.
type Result[S any] struct {
	// State is the initial state with every applied update.
	State S

	// Nodes lists every node in topological order.
	Nodes []NodeReport

	// Duration is the wall-clock time of the whole execution.
	Duration time.Duration
}

// Node returns the report for id.
func (r *Result[S]) Node(id string) (NodeReport, bool) {
	for _, report := range r.Nodes {
		if report.ID == id {
			return report, true
		}
	}
	return NodeReport{}, false
}

type node[S any] struct {
	id           string
	step         Step[S]
	timeout      time.Duration
	level        int
	dependencies []string
}

type edge struct {
	from string
	to   string
}

type graphConfig struct {
	// maxConcurrency limits the nodes running at once within a level. Zero
	// means unlimited.
	maxConcurrency int

	// executionTimeout bounds the whole execution. Zero means no timeout.
	executionTimeout time.Duration

	errorStrategy ErrorStrategy

	// observer overrides the one found in the execution context.
	observer observability.Provider
}

// Graph is a validated, executable DAG over state S.
type Graph[S any] struct {
	nodes            map[string]*node[S]
	edges            []edge
	levels           [][]string
	topologicalOrder []string
	config           graphConfig
}

// Levels returns the node ids grouped by topological level.
func (graph *Graph[S]) Levels() [][]string {
	levels := make([][]string, len(graph.levels))
	for index, level := range graph.levels {
		levels[index] = append([]string(nil), level...)
	}
	return levels
}

// Dependencies returns the ids of the nodes that must complete before id.
func (graph *Graph[S]) Dependencies(id string) []string {
	graphNode, exists := graph.nodes[id]
	if !exists {
		return nil
	}
	return append([]string(nil), graphNode.dependencies...)
}
