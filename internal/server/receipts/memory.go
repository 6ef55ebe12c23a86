package receipts

import (
	"context"
	"sync"
)

// MemoryRepository keeps receipts for the lifetime of the process.
type MemoryRepository struct {
	mu    sync.Mutex
	items map[string]Receipt
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]Receipt)}
}

func (m *MemoryRepository) Record(ctx context.Context, r *Receipt) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[r.NoteID]; ok {
		return true, nil
	}
	m.items[r.NoteID] = *r
	return false, nil
}

func (m *MemoryRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}
