package audit

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepository keeps logs in process. Used by the CLI and tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	logs []Log
}

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Reader     = (*MemoryRepository)(nil)
)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Save(_ context.Context, l Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, l)
	return nil
}

// ListByIdentifier returns up to limit logs of one parcel, newest first.
func (m *MemoryRepository) ListByIdentifier(_ context.Context, identifier string, limit int) ([]Log, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Log{}
	for i := len(m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.logs[i].Identifier == identifier {
			out = append(out, m.logs[i])
		}
	}
	return out, nil
}

// All returns a copy of every stored log.
func (m *MemoryRepository) All() []Log {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.logs)
}
