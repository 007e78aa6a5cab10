package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogEmitterText(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, false)

	emitter.Emit(Event{
		RunID:  "run-1",
		Step:   2,
		NodeID: "generate",
		Msg:    "node_completed",
		Meta:   map[string]any{"duration_ms": 42},
	})

	line := buf.String()
	for _, want := range []string{"[node_completed]", "run=run-1", "step=2", "node=generate", `"duration_ms":42`} {
		if !strings.Contains(line, want) {
			t.Errorf("text output missing %q: %s", want, line)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("text output not newline terminated")
	}
}

func TestLogEmitterJSON(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, true)

	emitter.Emit(Event{RunID: "run-1", Step: 1, NodeID: "retrieve", Msg: "node_completed"})
	emitter.Emit(Event{RunID: "run-1", Step: 1, NodeID: "retrieve", Msg: "branch_decision",
		Meta: map[string]any{"label": "useful"}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSONL lines, got %d", len(lines))
	}

	var decoded struct {
		RunID  string         `json:"runID"`
		Step   int            `json:"step"`
		NodeID string         `json:"nodeID"`
		Msg    string         `json:"msg"`
		Meta   map[string]any `json:"meta"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &decoded); err != nil {
		t.Fatalf("second line is not valid JSON: %v", err)
	}
	if decoded.Msg != "branch_decision" || decoded.Meta["label"] != "useful" {
		t.Errorf("unexpected decoded event: %+v", decoded)
	}
}

func TestMultiFansOut(t *testing.T) {
	a := NewBufferedEmitter()
	b := NewBufferedEmitter()
	multi := Multi{a, b}

	multi.Emit(Event{RunID: "run-1", Msg: "node_completed"})

	if len(a.History("run-1")) != 1 || len(b.History("run-1")) != 1 {
		t.Error("Multi did not deliver to every sink")
	}
}
