package emit

import (
	"sync"
	"testing"
)

func seedEvents(b *BufferedEmitter) {
	b.Emit(Event{RunID: "run-1", Step: 1, NodeID: "retrieve", Msg: "node_completed"})
	b.Emit(Event{RunID: "run-1", Step: 2, NodeID: "generate", Msg: "node_completed"})
	b.Emit(Event{RunID: "run-1", Step: 2, NodeID: "generate", Msg: "branch_decision"})
	b.Emit(Event{RunID: "run-1", Step: 3, NodeID: "transform_query", Msg: "node_completed"})
	b.Emit(Event{RunID: "run-2", Step: 1, NodeID: "retrieve", Msg: "node_completed"})
}

func TestBufferedEmitterHistory(t *testing.T) {
	b := NewBufferedEmitter()
	seedEvents(b)

	t.Run("events are per run", func(t *testing.T) {
		if got := len(b.History("run-1")); got != 4 {
			t.Errorf("run-1 history = %d events, want 4", got)
		}
		if got := len(b.History("run-2")); got != 1 {
			t.Errorf("run-2 history = %d events, want 1", got)
		}
		if got := len(b.History("unknown")); got != 0 {
			t.Errorf("unknown run history = %d events, want 0", got)
		}
	})

	t.Run("history is a copy", func(t *testing.T) {
		events := b.History("run-1")
		events[0].Msg = "tampered"
		if b.History("run-1")[0].Msg != "node_completed" {
			t.Error("mutating the returned slice reached the buffer")
		}
	})
}

func TestBufferedEmitterFilter(t *testing.T) {
	b := NewBufferedEmitter()
	seedEvents(b)

	intPtr := func(n int) *int { return &n }

	tests := []struct {
		name   string
		filter HistoryFilter
		want   int
	}{
		{"by node", HistoryFilter{NodeID: "generate"}, 2},
		{"by msg", HistoryFilter{Msg: "branch_decision"}, 1},
		{"by node and msg", HistoryFilter{NodeID: "generate", Msg: "node_completed"}, 1},
		{"by step range", HistoryFilter{MinStep: intPtr(2), MaxStep: intPtr(2)}, 2},
		{"min step only", HistoryFilter{MinStep: intPtr(3)}, 1},
		{"no match", HistoryFilter{NodeID: "ghost"}, 0},
		{"empty filter matches all", HistoryFilter{}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(b.HistoryWithFilter("run-1", tt.filter)); got != tt.want {
				t.Errorf("filter matched %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestBufferedEmitterClear(t *testing.T) {
	b := NewBufferedEmitter()
	seedEvents(b)

	b.Clear("run-1")
	if len(b.History("run-1")) != 0 {
		t.Error("Clear left events behind")
	}
	if len(b.History("run-2")) != 1 {
		t.Error("Clear removed another run's events")
	}

	b.ClearAll()
	if len(b.History("run-2")) != 0 {
		t.Error("ClearAll left events behind")
	}
}

func TestBufferedEmitterConcurrent(t *testing.T) {
	b := NewBufferedEmitter()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.Emit(Event{RunID: "shared", Step: j, Msg: "node_completed"})
			}
		}()
	}
	wg.Wait()

	if got := len(b.History("shared")); got != 800 {
		t.Errorf("expected 800 events, got %d", got)
	}
}
