// Package emit provides pluggable observability sinks for graph execution
// events.
package emit

// Event is one observability event from a workflow run.
//
// The engine emits "node_completed" after each merge, "branch_decision"
// after each conditional edge resolution, and "run_completed" /
// "run_failed" at run end. Node implementations are free to emit their own
// events through the same sink.
type Event struct {
	// RunID identifies the run that produced this event.
	RunID string

	// Step is the 1-indexed node application this event belongs to. Zero
	// for run-level events that precede the first step.
	Step int

	// NodeID is the node this event concerns; empty for run-level events.
	NodeID string

	// Msg names the event kind.
	Msg string

	// Meta carries event-specific structured data. Common keys:
	// "duration_ms", "label", "target", "error".
	Meta map[string]any
}
