package llm

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real.
// Si Script está definido tiene prioridad sobre Response/Err.
type MockClient struct {
	Response string
	Err      error
	Script   func(call int, req Request) (string, error)

	mu    sync.Mutex
	calls []Request
}

func (m *MockClient) Generate(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	call := len(m.calls)
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Script != nil {
		return m.Script(call, req)
	}
	return m.Response, m.Err
}

// Calls devuelve una copia de las requests recibidas.
func (m *MockClient) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}
