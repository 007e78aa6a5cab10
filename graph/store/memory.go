package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemStore is the in-memory TraceStore. Traces are lost when the process
// exits; use it for tests, development and workflows whose trace is only
// read within the same process.
type MemStore struct {
	mu     sync.RWMutex
	traces map[string][]StepRecord
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{traces: make(map[string][]StepRecord)}
}

// AppendStep implements TraceStore. Marshaling the state here gives each
// record its own snapshot, so later mutations of a shared state value
// cannot rewrite history.
func (m *MemStore) AppendStep(_ context.Context, runID string, step int, nodeID string, state any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state for run %s step %d: %w", runID, step, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.traces[runID] = append(m.traces[runID], StepRecord{
		Step:   step,
		NodeID: nodeID,
		State:  data,
		At:     time.Now().UTC(),
	})
	return nil
}

// LoadTrace implements TraceStore.
func (m *MemStore) LoadTrace(_ context.Context, runID string) ([]StepRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records, ok := m.traces[runID]
	if !ok || len(records) == 0 {
		return nil, ErrNotFound
	}
	out := make([]StepRecord, len(records))
	copy(out, records)
	return out, nil
}

// LatestStep implements TraceStore.
func (m *MemStore) LatestStep(_ context.Context, runID string) (StepRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records, ok := m.traces[runID]
	if !ok || len(records) == 0 {
		return StepRecord{}, ErrNotFound
	}
	return records[len(records)-1], nil
}

// Clear drops the trace of one run.
func (m *MemStore) Clear(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.traces, runID)
}
