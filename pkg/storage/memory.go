package storage

import (
	"sync"

	"github.com/lhanjian/yarhs/pkg/domain"
)

// MemoryStore is a non-persistent SnapshotStore, used when
// server.enable_state_persistence is false (the default) and in tests: Save
// keeps the latest snapshot in memory, Load returns it back. A fresh process
// therefore starts from nil (no restored state) on every restart.
type MemoryStore struct {
	mu   sync.RWMutex
	snap *domain.ConfigSnapshot
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save records snap as the latest value.
func (m *MemoryStore) Save(snap *domain.ConfigSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap.Clone()
	return nil
}

// Load returns the last-saved snapshot, or nil if Save was never called.
func (m *MemoryStore) Load() (*domain.ConfigSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snap == nil {
		return nil, nil
	}
	return m.snap.Clone(), nil
}
