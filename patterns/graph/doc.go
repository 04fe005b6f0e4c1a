// Package graph runs a directed acyclic graph of steps over a typed state.
//
// Every node wraps a [Step] that reads a snapshot of the state and returns an
// [Update]. Nodes are grouped into topological levels by Kahn's algorithm;
// the nodes of one level run concurrently and the level is fully joined
// before the next one starts. Updates are applied after the join, in the
// order the nodes were declared, so concurrent steps never write shared
// memory and need no locks.
//
// If the state type implements [Cloner], each node receives its own deep copy.
//
// Example:
//
//	type Counts struct{ A, B, Sum int }
//
//	g, err := graph.NewGraphBuilder[Counts](graph.WithMaxConcurrency(4)).
//	    AddNode("a", graph.StepFunc[Counts](func(ctx context.Context, s Counts) (graph.Update[Counts], error) {
//	        return func(s *Counts) { s.A = 1 }, nil
//	    })).
//	    AddNode("b", stepB).
//	    AddNode("sum", stepSum).
//	    AddFanIn([]string{"a", "b"}, "sum").
//	    Build()
//
//	result, err := g.Execute(ctx, Counts{})
//	fmt.Println(result.State.Sum)
//
// The graph is immutable after Build and Execute may be called concurrently.
package graph
