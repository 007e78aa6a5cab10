// Package store persists workflow run traces.
//
// A trace store is an audit log, not a checkpoint mechanism: the engine
// writes one record per node application and never reads the trace back to
// resume a run. States are persisted as JSON, so they can be inspected
// with ordinary tooling regardless of the graph's Go state type.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a run ID has no recorded steps.
var ErrNotFound = errors.New("not found")

// StepRecord is one persisted trace step.
type StepRecord struct {
	// Step is the 1-indexed position within the run.
	Step int `json:"step"`

	// NodeID is the node that produced the state.
	NodeID string `json:"node_id"`

	// State is the run state after this step's merge, as JSON.
	State json.RawMessage `json:"state"`

	// At is when the step was recorded.
	At time.Time `json:"at"`
}

// TraceStore records run traces. Implementations must be safe for
// concurrent use: independent runs append interleaved. Within a single
// run, steps arrive in order with strictly increasing step numbers.
//
// MemStore keeps traces in memory for tests and short-lived processes;
// SQLiteStore persists to a single file with zero setup; MySQLStore
// serves multi-process deployments.
type TraceStore interface {
	// AppendStep records the state after one node application. The state
	// must be JSON-serializable.
	AppendStep(ctx context.Context, runID string, step int, nodeID string, state any) error

	// LoadTrace returns the full trace of a run ordered by step number,
	// or ErrNotFound if the run recorded nothing.
	LoadTrace(ctx context.Context, runID string) ([]StepRecord, error)

	// LatestStep returns the most recent record of a run, or ErrNotFound.
	LatestStep(ctx context.Context, runID string) (StepRecord, error)
}
