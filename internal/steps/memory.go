package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryRunner — in-memory реализация Runner для тестов.
//
// Хранит результаты шагов в карте и считает фактические вызовы fn,
// что позволяет проверять семантику «не более одного раза».
type MemoryRunner struct {
	mu      sync.Mutex
	results map[string]json.RawMessage
	calls   map[string]int
}

// NewMemoryRunner создаёт пустой MemoryRunner.
func NewMemoryRunner() *MemoryRunner {
	return &MemoryRunner{
		results: make(map[string]json.RawMessage),
		calls:   make(map[string]int),
	}
}

// Run реализует Runner.
func (m *MemoryRunner) Run(ctx context.Context, name string, fn func(ctx context.Context) (any, error)) (json.RawMessage, error) {
	m.mu.Lock()
	if raw, ok := m.results[name]; ok {
		m.mu.Unlock()
		return raw, nil
	}
	m.mu.Unlock()

	value, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("step %q: marshal result: %w", name, err)
	}

	m.mu.Lock()
	m.results[name] = raw
	m.calls[name]++
	m.mu.Unlock()

	return raw, nil
}

// Calls возвращает число фактических выполнений шага name.
func (m *MemoryRunner) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// Seed записывает готовый результат шага, как будто он уже выполнялся.
func (m *MemoryRunner) Seed(name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("seed step %q: %w", name, err)
	}
	m.mu.Lock()
	m.results[name] = raw
	m.mu.Unlock()
	return nil
}
