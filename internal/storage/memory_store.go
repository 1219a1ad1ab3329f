package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore хранит факты мира в памяти процесса (тесты, локальный запуск)
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]WorldRecord
	closed  bool
}

// NewMemoryStore создаёт пустое in-memory хранилище
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]WorldRecord)}
}

func (m *MemoryStore) ApplyUpdate(ctx context.Context, u WorldUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	rec := m.records[u.WorldID]
	rec.Apply(u, time.Now())
	m.records[u.WorldID] = rec
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, worldID string) (WorldRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[worldID]
	if !ok {
		return WorldRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
