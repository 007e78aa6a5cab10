package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
)

type payload struct {
	Question string `json:"question"`
	Counter  int    `json:"counter"`
}

// exerciseTraceStore runs the TraceStore contract against any
// implementation.
func exerciseTraceStore(t *testing.T, st TraceStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("append and load in step order", func(t *testing.T) {
		const runID = "contract-order"
		for i := 1; i <= 3; i++ {
			err := st.AppendStep(ctx, runID, i, fmt.Sprintf("node-%d", i), payload{Question: "q", Counter: i})
			if err != nil {
				t.Fatalf("AppendStep %d failed: %v", i, err)
			}
		}

		trace, err := st.LoadTrace(ctx, runID)
		if err != nil {
			t.Fatalf("LoadTrace failed: %v", err)
		}
		if len(trace) != 3 {
			t.Fatalf("expected 3 records, got %d", len(trace))
		}
		for i, rec := range trace {
			if rec.Step != i+1 {
				t.Errorf("record %d has step %d", i, rec.Step)
			}
			var p payload
			if err := json.Unmarshal(rec.State, &p); err != nil {
				t.Fatalf("stored state is not valid JSON: %v", err)
			}
			if p.Counter != i+1 {
				t.Errorf("record %d state counter = %d", i, p.Counter)
			}
			if rec.At.IsZero() {
				t.Errorf("record %d has zero timestamp", i)
			}
		}
	})

	t.Run("latest step", func(t *testing.T) {
		const runID = "contract-latest"
		_ = st.AppendStep(ctx, runID, 1, "first", payload{Counter: 1})
		_ = st.AppendStep(ctx, runID, 2, "second", payload{Counter: 2})

		latest, err := st.LatestStep(ctx, runID)
		if err != nil {
			t.Fatalf("LatestStep failed: %v", err)
		}
		if latest.Step != 2 || latest.NodeID != "second" {
			t.Errorf("latest = step %d node %q, want step 2 node second", latest.Step, latest.NodeID)
		}
	})

	t.Run("unknown run returns ErrNotFound", func(t *testing.T) {
		if _, err := st.LoadTrace(ctx, "contract-missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("LoadTrace error = %v, want ErrNotFound", err)
		}
		if _, err := st.LatestStep(ctx, "contract-missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("LatestStep error = %v, want ErrNotFound", err)
		}
	})

	t.Run("runs are isolated", func(t *testing.T) {
		_ = st.AppendStep(ctx, "contract-iso-a", 1, "a", payload{})
		_ = st.AppendStep(ctx, "contract-iso-b", 1, "b", payload{})

		trace, err := st.LoadTrace(ctx, "contract-iso-a")
		if err != nil {
			t.Fatalf("LoadTrace failed: %v", err)
		}
		if len(trace) != 1 || trace[0].NodeID != "a" {
			t.Errorf("run isolation broken: %+v", trace)
		}
	})

	t.Run("rejects unmarshalable state", func(t *testing.T) {
		err := st.AppendStep(ctx, "contract-bad", 1, "a", map[string]any{"ch": make(chan int)})
		if err == nil {
			t.Error("expected error for unmarshalable state")
		}
	})
}

func TestMemStore(t *testing.T) {
	exerciseTraceStore(t, NewMemStore())
}

func TestMemStoreSnapshotIsolation(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()

	state := map[string]any{"question": "original"}
	if err := st.AppendStep(ctx, "snap", 1, "retrieve", state); err != nil {
		t.Fatalf("AppendStep failed: %v", err)
	}

	// Mutating the caller's state after the append must not rewrite
	// history.
	state["question"] = "mutated"

	trace, err := st.LoadTrace(ctx, "snap")
	if err != nil {
		t.Fatalf("LoadTrace failed: %v", err)
	}
	var stored map[string]any
	if err := json.Unmarshal(trace[0].State, &stored); err != nil {
		t.Fatalf("unmarshal stored state: %v", err)
	}
	if stored["question"] != "original" {
		t.Errorf("stored state followed the live value: %v", stored["question"])
	}
}

func TestMemStoreClear(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()

	_ = st.AppendStep(ctx, "gone", 1, "a", payload{})
	st.Clear("gone")

	if _, err := st.LoadTrace(ctx, "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after Clear, got %v", err)
	}
}

func TestMemStoreConcurrent(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(run int) {
			defer wg.Done()
			runID := fmt.Sprintf("concurrent-%d", run)
			for step := 1; step <= 50; step++ {
				if err := st.AppendStep(ctx, runID, step, "n", payload{Counter: step}); err != nil {
					t.Errorf("AppendStep failed: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		trace, err := st.LoadTrace(ctx, fmt.Sprintf("concurrent-%d", i))
		if err != nil {
			t.Fatalf("LoadTrace failed: %v", err)
		}
		if len(trace) != 50 {
			t.Errorf("run %d has %d records, want 50", i, len(trace))
		}
	}
}
