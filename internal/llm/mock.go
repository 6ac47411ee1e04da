package llm

import (
	"context"
	"sync"
)

// MockEmbedder permite tests sin llamar a un proveedor real.
type MockEmbedder struct {
	Vector []float32
	ByText map[string][]float32
	Err    error

	mu    sync.Mutex
	Calls []string
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, text)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if v, ok := m.ByText[text]; ok {
		return append([]float32(nil), v...), nil
	}
	return append([]float32(nil), m.Vector...), nil
}
