package graph

import (
	"errors"
	"fmt"
	"sort"
)

// GraphBuilder constructs a validated Graph[S] using a fluent API.
// Nodes and edges are added incrementally; Build performs structural
// validation including cycle detection via Kahn's algorithm.
//
// Example:
//
//	g, err := graph.NewGraphBuilder[State]().
//	    AddNode("fetch", fetchStep).
//	    AddNode("analyze", analyzeStep).
//	    AddEdge("fetch", "analyze").
//	    Build()
type GraphBuilder[S any] struct {
	config graphConfig

	nodes map[string]*node[S]
	edges []edge

	// nodeOrder preserves declaration order. It orders nodes within a level
	// and therefore the order in which their updates are applied.
	nodeOrder []string

	// buildErrors accumulates errors from AddNode/AddEdge until Build.
	buildErrors []error
}

// NewGraphBuilder creates a new GraphBuilder for constructing a Graph[S].
func NewGraphBuilder[S any](opts ...Option) *GraphBuilder[S] {
	config := graphConfig{
		errorStrategy: ErrorStrategyFailFast,
	}
	for _, opt := range opts {
		opt(&config)
	}

	return &GraphBuilder[S]{
		config: config,
		nodes:  make(map[string]*node[S]),
	}
}

// AddNode registers a node with a unique id. Errors are reported by Build.
func (builder *GraphBuilder[S]) AddNode(nodeID string, step Step[S], opts ...NodeOption) *GraphBuilder[S] {
	if nodeID == "" {
		builder.buildErrors = append(builder.buildErrors, ErrEmptyNodeID)
		return builder
	}
	if step == nil {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("%w: node %q", ErrNilStep, nodeID))
		return builder
	}
	if _, exists := builder.nodes[nodeID]; exists {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("%w: %q", ErrDuplicateNode, nodeID))
		return builder
	}

	var config nodeConfig
	for _, opt := range opts {
		opt(&config)
	}

	builder.nodes[nodeID] = &node[S]{
		id:      nodeID,
		step:    step,
		timeout: config.timeout,
	}
	builder.nodeOrder = append(builder.nodeOrder, nodeID)
	return builder
}

// AddEdge declares that from must complete before to runs.
func (builder *GraphBuilder[S]) AddEdge(from, to string) *GraphBuilder[S] {
	if from == "" || to == "" {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("%w: edge %q -> %q", ErrEmptyNodeID, from, to))
		return builder
	}
	if from == to {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("%w: %q", ErrSelfLoop, from))
		return builder
	}

	builder.edges = append(builder.edges, edge{from: from, to: to})
	return builder
}

// AddFanOut adds an edge from one node to each of targets.
func (builder *GraphBuilder[S]) AddFanOut(from string, targets ...string) *GraphBuilder[S] {
	for _, target := range targets {
		builder.AddEdge(from, target)
	}
	return builder
}

// AddFanIn adds an edge from each of sources to one node, making it a
// barrier over all of them.
func (builder *GraphBuilder[S]) AddFanIn(sources []string, to string) *GraphBuilder[S] {
	for _, source := range sources {
		builder.AddEdge(source, to)
	}
	return builder
}

// Build validates the graph and computes its topological levels. It rejects
// accumulated AddNode/AddEdge errors, empty graphs, unknown or duplicate
// edges, and cycles.
func (builder *GraphBuilder[S]) Build() (*Graph[S], error) {
	if len(builder.buildErrors) > 0 {
		return nil, fmt.Errorf("graph build errors: %w", errors.Join(builder.buildErrors...))
	}
	if len(builder.nodes) == 0 {
		return nil, ErrEmptyGraph
	}
	if err := builder.validateEdges(); err != nil {
		return nil, err
	}

	inDegree, adjacency := builder.buildAdjacency()
	topologicalOrder, levels, err := kahnTopologicalSort(inDegree, adjacency, builder.nodeOrder)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*node[S], len(builder.nodes))
	for nodeID, graphNode := range builder.nodes {
		copied := *graphNode
		copied.dependencies = nil
		nodes[nodeID] = &copied
	}
	for _, graphEdge := range builder.edges {
		target := nodes[graphEdge.to]
		target.dependencies = append(target.dependencies, graphEdge.from)
	}
	for levelIndex, level := range levels {
		for _, nodeID := range level {
			nodes[nodeID].level = levelIndex
		}
	}

	return &Graph[S]{
		nodes:            nodes,
		edges:            append([]edge(nil), builder.edges...),
		levels:           levels,
		topologicalOrder: topologicalOrder,
		config:           builder.config,
	}, nil
}

func (builder *GraphBuilder[S]) validateEdges() error {
	seen := make(map[edge]bool, len(builder.edges))

	for _, graphEdge := range builder.edges {
		if _, exists := builder.nodes[graphEdge.from]; !exists {
			return fmt.Errorf("%w: edge source %q", ErrNodeNotFound, graphEdge.from)
		}
		if _, exists := builder.nodes[graphEdge.to]; !exists {
			return fmt.Errorf("%w: edge target %q", ErrNodeNotFound, graphEdge.to)
		}
		if seen[graphEdge] {
			return fmt.Errorf("%w: %q -> %q", ErrDuplicateEdge, graphEdge.from, graphEdge.to)
		}
		seen[graphEdge] = true
	}
	return nil
}

// buildAdjacency constructs the in-degree map and adjacency list. Every node
// starts with in-degree 0.
func (builder *GraphBuilder[S]) buildAdjacency() (map[string]int, map[string][]string) {
	inDegree := make(map[string]int, len(builder.nodes))
	adjacency := make(map[string][]string, len(builder.nodes))

	for nodeID := range builder.nodes {
		inDegree[nodeID] = 0
	}
	for _, graphEdge := range builder.edges {
		adjacency[graphEdge.from] = append(adjacency[graphEdge.from], graphEdge.to)
		inDegree[graphEdge.to]++
	}
	return inDegree, adjacency
}

// kahnTopologicalSort sorts the nodes topologically, grouping them by level
// (level 0 = roots), and detects cycles. Within each level nodes keep their
// declaration order.
func kahnTopologicalSort(inDegree map[string]int, adjacency map[string][]string, nodeOrder []string) ([]string, [][]string, error) {
	nodePosition := make(map[string]int, len(nodeOrder))
	for index, nodeID := range nodeOrder {
		nodePosition[nodeID] = index
	}
	byDeclaration := func(ids []string) {
		sort.Slice(ids, func(a, b int) bool {
			return nodePosition[ids[a]] < nodePosition[ids[b]]
		})
	}

	currentLevel := make([]string, 0)
	for nodeID, degree := range inDegree {
		if degree == 0 {
			currentLevel = append(currentLevel, nodeID)
		}
	}
	byDeclaration(currentLevel)

	topologicalOrder := make([]string, 0, len(inDegree))
	levels := make([][]string, 0)
	processedCount := 0

	for len(currentLevel) > 0 {
		levels = append(levels, currentLevel)
		topologicalOrder = append(topologicalOrder, currentLevel...)
		processedCount += len(currentLevel)

		nextLevel := make([]string, 0)
		for _, nodeID := range currentLevel {
			for _, neighbor := range adjacency[nodeID] {
				inDegree[neighbor]--
				if inDegree[neighbor] == 0 {
					nextLevel = append(nextLevel, neighbor)
				}
			}
		}
		byDeclaration(nextLevel)
		currentLevel = nextLevel
	}

	if processedCount != len(inDegree) {
		cycleNodes := make([]string, 0)
		for nodeID, degree := range inDegree {
			if degree > 0 {
				cycleNodes = append(cycleNodes, nodeID)
			}
		}
		sort.Strings(cycleNodes)
		return nil, nil, fmt.Errorf("%w involving nodes: %v", ErrCycleDetected, cycleNodes)
	}

	return topologicalOrder, levels, nil
}
