package graph

import (
	"reflect"
	"testing"
)

func TestMergeMaps(t *testing.T) {
	tests := []struct {
		name  string
		prev  MapState
		delta MapState
		want  MapState
	}{
		{
			name:  "delta overwrites prev",
			prev:  MapState{"a": 1, "b": "old"},
			delta: MapState{"b": "new"},
			want:  MapState{"a": 1, "b": "new"},
		},
		{
			name:  "keys absent from delta survive",
			prev:  MapState{"a": 1, "b": 2},
			delta: MapState{"c": 3},
			want:  MapState{"a": 1, "b": 2, "c": 3},
		},
		{
			name:  "empty delta is identity",
			prev:  MapState{"a": 1},
			delta: MapState{},
			want:  MapState{"a": 1},
		},
		{
			name:  "nil prev",
			prev:  nil,
			delta: MapState{"a": 1},
			want:  MapState{"a": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeMaps(tt.prev, tt.delta)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeMaps() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("arguments are not mutated", func(t *testing.T) {
		prev := MapState{"a": 1}
		delta := MapState{"a": 2}
		_ = MergeMaps(prev, delta)
		if prev["a"] != 1 {
			t.Error("prev was mutated")
		}
		if delta["a"] != 2 {
			t.Error("delta was mutated")
		}
	})
}

func TestClone(t *testing.T) {
	t.Run("deep copies nested data", func(t *testing.T) {
		original := testState{Value: "v", Counter: 2, Visited: []string{"a", "b"}}

		copied, err := Clone(original)
		if err != nil {
			t.Fatalf("Clone failed: %v", err)
		}

		copied.Visited[0] = "mutated"
		if original.Visited[0] != "a" {
			t.Error("mutating the clone reached the original")
		}
	})

	t.Run("fails on unmarshalable state", func(t *testing.T) {
		if _, err := Clone(map[string]any{"ch": make(chan int)}); err == nil {
			t.Error("expected error for state with a channel")
		}
	})
}
