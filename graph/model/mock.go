package model

import (
	"context"
	"fmt"
	"sync"
)

// MockModel is a scriptable ChatModel for tests. Completions and labels
// are consumed in order; when a script runs out the last entry repeats.
type MockModel struct {
	mu          sync.Mutex
	Completions []string
	Labels      []string
	Err         error

	completeCalls int
	labelCalls    int
}

// Complete implements ChatModel.
func (m *MockModel) Complete(_ context.Context, _ []Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Completions) == 0 {
		return "", fmt.Errorf("mock model has no scripted completions")
	}
	i := min(m.completeCalls, len(m.Completions)-1)
	m.completeCalls++
	return m.Completions[i], nil
}

// Label implements ChatModel.
func (m *MockModel) Label(_ context.Context, _ []Message, labels []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Labels) == 0 {
		return "", fmt.Errorf("mock model has no scripted labels")
	}
	i := min(m.labelCalls, len(m.Labels)-1)
	m.labelCalls++
	answer := m.Labels[i]
	for _, l := range labels {
		if l == answer {
			return answer, nil
		}
	}
	return "", fmt.Errorf("scripted label %q not in allowed set %v", answer, labels)
}

// CompleteCalls reports how many times Complete was invoked.
func (m *MockModel) CompleteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completeCalls
}

// LabelCalls reports how many times Label was invoked.
func (m *MockModel) LabelCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.labelCalls
}
