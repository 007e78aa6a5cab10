package graph

import "context"

// Node is a named processing step in the workflow graph. It receives the
// current state and returns a partial state (a delta) to be merged into the
// run's state by the graph's Reducer.
//
// The engine places no purity constraint on nodes: a node may perform
// network calls or other side effects. Nodes on a cycle are re-entered, so
// they must be safe to run more than once per run. A node blocks the run
// for the duration of its call; timeouts belong to the node's own I/O, via
// the context it receives.
//
// Type parameter S is the state type shared across the workflow.
type Node[S any] interface {
	// Run executes the node against the current state and returns the
	// delta to merge. A returned error fails the run; the delta is then
	// discarded, never merged.
	Run(ctx context.Context, state S) (S, error)
}

// NodeFunc adapts a plain function to the Node interface.
//
//	g.AddNode("greet", graph.NodeFunc[MyState](func(ctx context.Context, s MyState) (MyState, error) {
//	    return MyState{Greeting: "hello " + s.Name}, nil
//	}))
type NodeFunc[S any] func(ctx context.Context, state S) (S, error)

// Run implements Node.
func (f NodeFunc[S]) Run(ctx context.Context, state S) (S, error) {
	return f(ctx, state)
}

// Reducer merges a node's delta into the accumulated state. The merge is a
// left-biased overwrite: fields carried by the delta replace the previous
// value, fields the delta leaves at their zero value are kept unchanged,
// and nothing is ever deleted. The reducer defines, per state type, what
// "carried by the delta" means.
//
//	func reduce(prev, delta DocState) DocState {
//	    if delta.Question != "" {
//	        prev.Question = delta.Question
//	    }
//	    if len(delta.Documents) > 0 {
//	        prev.Documents = delta.Documents
//	    }
//	    return prev
//	}
type Reducer[S any] func(prev, delta S) S
