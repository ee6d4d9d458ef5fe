package preference

import (
	"context"
	"sort"
	"sync"

	"newshub/internal/domain/entity"
)

// MemoryStore is a Store that keeps preferences in process memory. It is
// used when no database is configured.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]entity.UserPreferences
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]entity.UserPreferences)}
}

func (m *MemoryStore) LoadAll(_ context.Context) ([]entity.UserPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.UserPreferences, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *MemoryStore) Save(_ context.Context, p entity.UserPreferences) error {
	m.mu.Lock()
	m.rows[p.UserID] = p.Clone()
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	delete(m.rows, userID)
	m.mu.Unlock()
	return nil
}
