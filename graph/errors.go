// Package graph provides a strongly-typed stateful workflow graph engine.
package graph

import (
	"errors"
	"fmt"
)

// ErrIterationLimit is returned by a run when the configured maximum step
// count is reached before the graph resolves to End. Cyclic graphs are a
// first-class feature, so the engine cannot prove termination statically;
// WithMaxSteps turns a runaway cycle into this error instead of an
// unbounded loop.
var ErrIterationLimit = errors.New("run exceeded maximum step count")

// DuplicateNodeError is returned by AddNode when the node ID is already
// registered. Node IDs are unique within a graph.
type DuplicateNodeError struct {
	ID string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate node %q", e.ID)
}

// DuplicateEdgeError is returned by AddEdge or AddConditionalEdges when the
// source node already has an outgoing edge. A node has exactly one outgoing
// edge, direct or conditional, never both.
type DuplicateEdgeError struct {
	From string
}

func (e *DuplicateEdgeError) Error() string {
	return fmt.Sprintf("node %q already has an outgoing edge", e.From)
}

// UnknownNodeError is returned by Compile when the entry point or an edge
// endpoint references a node ID that was never registered.
type UnknownNodeError struct {
	// ID is the unregistered node ID.
	ID string

	// Referent describes where the ID was referenced, e.g. "entry point" or
	// `edge from "generate"`.
	Referent string
}

func (e *UnknownNodeError) Error() string {
	if e.Referent != "" {
		return fmt.Sprintf("unknown node %q referenced by %s", e.ID, e.Referent)
	}
	return fmt.Sprintf("unknown node %q", e.ID)
}

// MissingEdgeError is returned by Compile when a registered node has no
// outgoing edge. A node that should end the run must route to End
// explicitly; a node with no route at all is a configuration error.
type MissingEdgeError struct {
	ID string
}

func (e *MissingEdgeError) Error() string {
	return fmt.Sprintf("node %q has no outgoing edge; route it to another node or graph.End", e.ID)
}

// UnhandledLabelError is returned by a run when a classifier produced a
// label that is not a key of its conditional edge's target map. This is a
// contract violation between the classifier and the edge wiring, not a
// retryable condition: the classifier stepped outside its declared label
// set.
type UnhandledLabelError struct {
	NodeID string
	Label  string
}

func (e *UnhandledLabelError) Error() string {
	return fmt.Sprintf("node %q: classifier returned unhandled label %q", e.NodeID, e.Label)
}

// NodeError wraps a failure raised by a node function or a classifier
// during a run. The engine never retries a NodeError; retry is expressed
// as graph topology (a cycle back through the failing stage).
type NodeError struct {
	// NodeID identifies the node whose function or classifier failed.
	NodeID string

	// Err is the underlying failure.
	Err error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q: %v", e.NodeID, e.Err)
}

// Unwrap returns the underlying cause for errors.Is and errors.As.
func (e *NodeError) Unwrap() error {
	return e.Err
}
