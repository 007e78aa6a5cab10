// Package tool provides executable tools that workflow nodes can
// invoke against external systems: web search, HTTP fetches, and
// whatever applications register themselves.
package tool

import "context"

// Tool is an executable capability a workflow node can call.
//
// Implementations should validate inputs, respect context cancellation
// and return structured output. Names are lowercase with underscores,
// e.g. "search_web" or "http_request".
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Call executes the tool. Input may be nil for parameterless
	// tools; the output is structured data for the caller to shape
	// into state.
	Call(ctx context.Context, input map[string]any) (map[string]any, error)
}
