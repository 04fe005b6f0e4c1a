package graph

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

// Execute runs the graph level by level starting from initial.
//
// Within a level every ready node runs in its own goroutine on a snapshot of
// the state; the level is joined before its updates are applied in
// declaration order, and only then does the next level start.
//
// The returned Result is never nil. On error it holds the state as of the
// last applied level and the per-node reports.
func (graph *Graph[S]) Execute(ctx context.Context, initial S) (*Result[S], error) {
	executionStart := time.Now()

	exec := graph.newExecution(ctx)
	ctx = exec.observeGraphStart(ctx)

	if graph.config.executionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, graph.config.executionTimeout)
		defer cancel()
	}

	state := snapshot(initial)
	executionError := exec.executeLevels(ctx, &state)
	totalDuration := time.Since(executionStart)

	result := &Result[S]{
		State:    state,
		Nodes:    exec.nodeReports(),
		Duration: totalDuration,
	}

	if executionError != nil {
		exec.observeGraphFailed(ctx, executionError, totalDuration)
		return result, fmt.Errorf("graph execution failed: %w", executionError)
	}

	exec.observeGraphCompleted(ctx, totalDuration, exec.allCompleted())
	return result, nil
}

// execution holds the per-call bookkeeping of Execute. Each node goroutine
// writes only its own report.
type execution[S any] struct {
	graph    *Graph[S]
	observer observability.Provider
	rootSpan observability.Span
	reports  map[string]*NodeReport
}

func (graph *Graph[S]) newExecution(ctx context.Context) *execution[S] {
	reports := make(map[string]*NodeReport, len(graph.nodes))
	for nodeID, graphNode := range graph.nodes {
		reports[nodeID] = &NodeReport{ID: nodeID, Level: graphNode.level, Status: NodePending}
	}

	observer := graph.config.observer
	if observer == nil {
		observer = observability.FromContextOr(ctx, nil)
	}

	return &execution[S]{
		graph:    graph,
		observer: observer,
		reports:  reports,
	}
}

func (exec *execution[S]) executeLevels(ctx context.Context, state *S) error {
	for levelIndex, levelNodeIDs := range exec.graph.levels {
		if err := ctx.Err(); err != nil {
			exec.skipPending("execution canceled")
			return fmt.Errorf("context done before level %d: %w", levelIndex, err)
		}

		exec.observeLevelStart(ctx, levelIndex, levelNodeIDs)

		readyNodes := exec.filterReadyNodes(ctx, levelNodeIDs)
		if len(readyNodes) == 0 {
			continue
		}

		updates, err := exec.executeLevel(ctx, levelIndex, readyNodes, *state)
		for _, update := range updates {
			if update != nil {
				update(state)
			}
		}
		if err != nil {
			exec.skipPending("graph stopped after failure")
			return err
		}
	}
	return nil
}

// filterReadyNodes drops, and marks skipped, every node with a failed or
// skipped dependency.
func (exec *execution[S]) filterReadyNodes(ctx context.Context, nodeIDs []string) []string {
	readyNodes := make([]string, 0, len(nodeIDs))

	for _, nodeID := range nodeIDs {
		blocked := ""
		for _, dependencyID := range exec.graph.nodes[nodeID].dependencies {
			switch exec.reports[dependencyID].Status {
			case NodeFailed, NodeSkipped:
				blocked = dependencyID
			}
			if blocked != "" {
				break
			}
		}

		if blocked != "" {
			exec.reports[nodeID].Status = NodeSkipped
			exec.observeNodeSkipped(ctx, nodeID, fmt.Sprintf("dependency %q did not complete", blocked))
			continue
		}
		readyNodes = append(readyNodes, nodeID)
	}
	return readyNodes
}

// executeLevel runs readyNodes concurrently and returns their updates in the
// same order. Under fail-fast the first error cancels the level.
func (exec *execution[S]) executeLevel(ctx context.Context, levelIndex int, readyNodes []string, state S) ([]Update[S], error) {
	updates := make([]Update[S], len(readyNodes))
	failFast := exec.graph.config.errorStrategy != ErrorStrategyContinueOnError

	group, levelContext := errgroup.WithContext(ctx)
	if exec.graph.config.maxConcurrency > 0 {
		group.SetLimit(exec.graph.config.maxConcurrency)
	}

	for index, nodeID := range readyNodes {
		group.Go(func() error {
			if failFast && levelContext.Err() != nil {
				exec.reports[nodeID].Status = NodeSkipped
				exec.observeNodeSkipped(levelContext, nodeID, "level canceled")
				return nil
			}

			update, err := exec.executeNode(levelContext, nodeID, levelIndex, snapshot(state))
			if err != nil {
				if failFast {
					return fmt.Errorf("node %q failed: %w", nodeID, err)
				}
				return nil
			}
			updates[index] = update
			return nil
		})
	}

	return updates, group.Wait()
}

func (exec *execution[S]) executeNode(ctx context.Context, nodeID string, levelIndex int, state S) (Update[S], error) {
	graphNode := exec.graph.nodes[nodeID]
	report := exec.reports[nodeID]
	report.Status = NodeRunning

	nodeContext, nodeSpan := exec.observeNodeStart(ctx, nodeID, levelIndex, graphNode.dependencies)

	if graphNode.timeout > 0 {
		var cancel context.CancelFunc
		nodeContext, cancel = context.WithTimeout(nodeContext, graphNode.timeout)
		defer cancel()
	}

	nodeStart := time.Now()
	update, err := runStep(nodeContext, graphNode.step, state)
	report.Duration = time.Since(nodeStart)

	if err != nil {
		report.Status = NodeFailed
		report.Err = err
		exec.observeNodeFailed(nodeContext, nodeSpan, nodeID, err, report.Duration)
		return nil, err
	}

	report.Status = NodeCompleted
	exec.observeNodeCompleted(nodeContext, nodeSpan, nodeID, report.Duration)
	return update, nil
}

// runStep calls the step, converting a panic into ErrNodePanic so a single
// faulty step cannot take down the process from a worker goroutine.
func runStep[S any](ctx context.Context, step Step[S], state S) (update Update[S], err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			update = nil
			err = fmt.Errorf("%w: %v", ErrNodePanic, recovered)
		}
	}()
	return step.Run(ctx, state)
}

// snapshot returns the value handed to a step.
func snapshot[S any](state S) S {
	if cloner, ok := any(state).(Cloner[S]); ok {
		return cloner.Clone()
	}
	return state
}

func (exec *execution[S]) skipPending(reason string) {
	for _, nodeID := range exec.graph.topologicalOrder {
		report := exec.reports[nodeID]
		if report.Status == NodePending {
			report.Status = NodeSkipped
			if report.Err == nil {
				report.Err = fmt.Errorf("graph: %s", reason)
			}
		}
	}
}

func (exec *execution[S]) nodeReports() []NodeReport {
	reports := make([]NodeReport, 0, len(exec.graph.topologicalOrder))
	for _, nodeID := range exec.graph.topologicalOrder {
		reports = append(reports, *exec.reports[nodeID])
	}
	return reports
}

func (exec *execution[S]) allCompleted() bool {
	for _, report := range exec.reports {
		if report.Status != NodeCompleted {
			return false
		}
	}
	return true
}
