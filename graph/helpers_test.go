package graph

import (
	"context"
	"sync"

	"github.com/veriflow/stategraph/graph/emit"
)

// testState is the state record used across the package tests.
type testState struct {
	Value   string   `json:"value"`
	Counter int      `json:"counter"`
	Visited []string `json:"visited"`
}

func testReducer(prev, delta testState) testState {
	if delta.Value != "" {
		prev.Value = delta.Value
	}
	prev.Counter += delta.Counter
	prev.Visited = append(prev.Visited, delta.Visited...)
	return prev
}

// visitNode returns a node that records its ID and bumps the counter.
func visitNode(id string) NodeFunc[testState] {
	return func(ctx context.Context, s testState) (testState, error) {
		return testState{Counter: 1, Visited: []string{id}}, nil
	}
}

// mockEmitter collects events for assertions.
type mockEmitter struct {
	mu     sync.Mutex
	events []emit.Event
}

func (m *mockEmitter) Emit(event emit.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *mockEmitter) byMsg(msg string) []emit.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []emit.Event
	for _, ev := range m.events {
		if ev.Msg == msg {
			out = append(out, ev)
		}
	}
	return out
}

// twoNodeGraph builds a -> b -> End.
func twoNodeGraph() *StateGraph[testState] {
	g := NewStateGraph(testReducer)
	_ = g.AddNode("a", visitNode("a"))
	_ = g.AddNode("b", visitNode("b"))
	_ = g.SetEntryPoint("a")
	_ = g.AddEdge("a", "b")
	_ = g.AddEdge("b", End)
	return g
}
