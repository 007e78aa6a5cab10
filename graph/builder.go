package graph

import (
	"fmt"
	"maps"
	"sort"
)

// StateGraph builds a workflow graph: named nodes, one outgoing edge per
// node (direct or conditional), and an entry point. Registration order
// carries no meaning; the entry point and the edges alone determine
// execution order. Compile validates the construction and returns an
// immutable Runnable.
//
//	g := graph.NewStateGraph(reduce)
//	g.AddNode("retrieve", retrieveNode)
//	g.AddNode("generate", generateNode)
//	g.AddNode("transform_query", transformNode)
//	g.SetEntryPoint("retrieve")
//	g.AddEdge("retrieve", "generate")
//	g.AddEdge("transform_query", "retrieve")
//	g.AddConditionalEdges("generate", grade, map[string]string{
//	    "useful":        graph.End,
//	    "not supported": "transform_query",
//	})
//	runnable, err := g.Compile(graph.WithMaxSteps(25))
//
// A StateGraph is not safe for concurrent mutation; build it on one
// goroutine, then share the compiled Runnable freely.
type StateGraph[S any] struct {
	reducer Reducer[S]
	nodes   map[string]Node[S]
	edges   map[string]edge[S]
	entry   string
}

// NewStateGraph creates an empty graph builder. The reducer merges node
// deltas into the run state and is required; see Reducer for the merge
// contract.
func NewStateGraph[S any](reducer Reducer[S]) *StateGraph[S] {
	return &StateGraph[S]{
		reducer: reducer,
		nodes:   make(map[string]Node[S]),
		edges:   make(map[string]edge[S]),
	}
}

// AddNode registers a node under a unique ID. Registering over an existing
// ID fails with *DuplicateNodeError.
func (g *StateGraph[S]) AddNode(id string, node Node[S]) error {
	if id == "" {
		return fmt.Errorf("node ID cannot be empty")
	}
	if id == End {
		return fmt.Errorf("node ID %q is reserved for the terminal marker", End)
	}
	if node == nil {
		return fmt.Errorf("node %q: implementation cannot be nil", id)
	}
	if _, exists := g.nodes[id]; exists {
		return &DuplicateNodeError{ID: id}
	}
	g.nodes[id] = node
	return nil
}

// AddEdge declares the unconditional successor of from. The target may be
// another node ID or End. A second edge out of the same node fails with
// *DuplicateEdgeError. Target existence is checked at Compile, so edges
// may be declared before their nodes.
func (g *StateGraph[S]) AddEdge(from, to string) error {
	if from == "" || to == "" {
		return fmt.Errorf("edge endpoints cannot be empty")
	}
	if _, exists := g.edges[from]; exists {
		return &DuplicateEdgeError{From: from}
	}
	g.edges[from] = edge[S]{to: to}
	return nil
}

// AddConditionalEdges declares a classifier-driven transition out of from.
// At run time the classifier is evaluated on the state after from's merge,
// and its label is looked up in targets; each target is a node ID or End.
// A label the classifier returns but targets does not declare fails the
// run with *UnhandledLabelError.
func (g *StateGraph[S]) AddConditionalEdges(from string, classify Classifier[S], targets map[string]string) error {
	if from == "" {
		return fmt.Errorf("edge source cannot be empty")
	}
	if classify == nil {
		return fmt.Errorf("edge from %q: classifier cannot be nil", from)
	}
	if len(targets) == 0 {
		return fmt.Errorf("edge from %q: target map cannot be empty", from)
	}
	if _, exists := g.edges[from]; exists {
		return &DuplicateEdgeError{From: from}
	}
	g.edges[from] = edge[S]{classify: classify, targets: maps.Clone(targets)}
	return nil
}

// SetEntryPoint names the node a run starts at. Existence is checked at
// Compile.
func (g *StateGraph[S]) SetEntryPoint(id string) error {
	if id == "" {
		return fmt.Errorf("entry point cannot be empty")
	}
	g.entry = id
	return nil
}

// Compile validates the graph and freezes it into a Runnable. It checks
// that the entry point is set and registered, that every edge endpoint
// other than End is registered, and that every node has exactly one
// outgoing edge. On any violation Compile returns the error and no
// Runnable; a partially valid graph is never produced.
//
// Compile also walks the graph from the entry point; nodes that cannot be
// reached are reported as warnings on the Runnable, not as failures, since
// dead branches are common while a graph is under construction. Cycles are
// intentionally not rejected: self-correction loops are the point of the
// engine, and termination is the classifier's responsibility (bound it
// with WithMaxSteps if needed).
func (g *StateGraph[S]) Compile(opts ...Option) (*Runnable[S], error) {
	if g.reducer == nil {
		return nil, fmt.Errorf("reducer is required")
	}
	if g.entry == "" {
		return nil, fmt.Errorf("entry point not set (call SetEntryPoint before Compile)")
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return nil, &UnknownNodeError{ID: g.entry, Referent: "entry point"}
	}

	for from, e := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, &UnknownNodeError{ID: from, Referent: "edge source"}
		}
		if e.conditional() {
			for label, to := range e.targets {
				if to == End {
					continue
				}
				if _, ok := g.nodes[to]; !ok {
					return nil, &UnknownNodeError{ID: to, Referent: fmt.Sprintf("edge from %q, label %q", from, label)}
				}
			}
			continue
		}
		if e.to != End {
			if _, ok := g.nodes[e.to]; !ok {
				return nil, &UnknownNodeError{ID: e.to, Referent: fmt.Sprintf("edge from %q", from)}
			}
		}
	}

	for id := range g.nodes {
		if _, ok := g.edges[id]; !ok {
			return nil, &MissingEdgeError{ID: id}
		}
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Runnable[S]{
		reducer:  g.reducer,
		nodes:    maps.Clone(g.nodes),
		edges:    maps.Clone(g.edges),
		entry:    g.entry,
		warnings: g.unreachable(),
		cfg:      cfg,
	}, nil
}

// unreachable returns the IDs of registered nodes not reachable from the
// entry point, sorted for stable reporting.
func (g *StateGraph[S]) unreachable() []string {
	visited := make(map[string]bool, len(g.nodes))
	frontier := []string{g.entry}
	for len(frontier) > 0 {
		id := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		if id == End || visited[id] {
			continue
		}
		visited[id] = true
		e, ok := g.edges[id]
		if !ok {
			continue
		}
		if e.conditional() {
			for _, to := range e.targets {
				frontier = append(frontier, to)
			}
		} else {
			frontier = append(frontier, e.to)
		}
	}

	var unreached []string
	for id := range g.nodes {
		if !visited[id] {
			unreached = append(unreached, id)
		}
	}
	sort.Strings(unreached)
	return unreached
}
