package graph

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/veriflow/stategraph/graph/store"
)

func TestWithMaxSteps(t *testing.T) {
	t.Run("rejects negative", func(t *testing.T) {
		cfg := defaultConfig()
		if err := WithMaxSteps(-1)(&cfg); err == nil {
			t.Error("expected error for negative cap")
		}
	})

	t.Run("zero means uncapped", func(t *testing.T) {
		cfg := defaultConfig()
		if err := WithMaxSteps(0)(&cfg); err != nil {
			t.Fatalf("WithMaxSteps(0) failed: %v", err)
		}
		if cfg.maxSteps != 0 {
			t.Errorf("maxSteps = %d, want 0", cfg.maxSteps)
		}
	})
}

func TestWithTraceStore(t *testing.T) {
	t.Run("trace records every step", func(t *testing.T) {
		st := store.NewMemStore()
		r, err := twoNodeGraph().Compile(WithTraceStore(st))
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}

		if _, err := r.Run(context.Background(), "trace-run", testState{}); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		trace, err := st.LoadTrace(context.Background(), "trace-run")
		if err != nil {
			t.Fatalf("LoadTrace failed: %v", err)
		}
		if len(trace) != 2 {
			t.Fatalf("expected 2 trace records, got %d", len(trace))
		}
		if trace[0].NodeID != "a" || trace[1].NodeID != "b" {
			t.Errorf("trace order wrong: %s, %s", trace[0].NodeID, trace[1].NodeID)
		}
		if trace[0].Step != 1 || trace[1].Step != 2 {
			t.Errorf("trace steps wrong: %d, %d", trace[0].Step, trace[1].Step)
		}
	})

	t.Run("store failure fails the run", func(t *testing.T) {
		r, err := twoNodeGraph().Compile(WithTraceStore(failingStore{}))
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}

		_, err = r.Run(context.Background(), "trace-fail", testState{})
		if err == nil || !errors.Is(err, errStoreDown) {
			t.Fatalf("expected the store failure to surface, got %v", err)
		}
	})
}

var errStoreDown = errors.New("store down")

type failingStore struct{}

func (failingStore) AppendStep(context.Context, string, int, string, any) error {
	return errStoreDown
}

func (failingStore) LoadTrace(context.Context, string) ([]store.StepRecord, error) {
	return nil, fmt.Errorf("not implemented")
}

func (failingStore) LatestStep(context.Context, string) (store.StepRecord, error) {
	return store.StepRecord{}, fmt.Errorf("not implemented")
}
