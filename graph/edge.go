package graph

import "context"

// End is the terminal marker. Routing a direct edge to End, or mapping a
// conditional edge's label to End, completes the run.
const End = "__end__"

// Classifier selects the labeled branch of a conditional edge. It is
// evaluated against the state as of the source node's merge, and must
// return a label drawn from the edge's declared target map. A label outside
// that set fails the run with UnhandledLabelError; a returned error fails
// the run with NodeError.
//
// Classifiers may be arbitrary functions, including ones that call out to
// an LLM grader; any implementation that constrains its output to the
// declared label set at its own boundary satisfies the contract.
type Classifier[S any] func(ctx context.Context, state S) (string, error)

// edge is the single outgoing transition of a node. Exactly one of the two
// variants is populated: a direct edge carries to, a conditional edge
// carries classify and targets.
type edge[S any] struct {
	// to is the direct successor, possibly End. Empty for conditional edges.
	to string

	// classify picks the branch label for conditional edges.
	classify Classifier[S]

	// targets maps each declared label to a successor node ID or End.
	targets map[string]string
}

func (e edge[S]) conditional() bool {
	return e.classify != nil
}
