package settings

import "sync"

// Store loads and persists Settings.
type Store interface {
	Load() (*Settings, error)
	Save(*Settings) error
}

// MemoryStore keeps settings in memory. Saved values are deep copies so later
// mutation by the caller does not leak into the store.
type MemoryStore struct {
	mu    sync.Mutex
	data  *Settings
	saves int
}

// NewMemoryStore returns a store seeded with s. A nil s yields defaults.
func NewMemoryStore(s *Settings) *MemoryStore {
	if s == nil {
		s = New()
	}
	return &MemoryStore{data: s.Clone()}
}

func (m *MemoryStore) Load() (*Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.Clone(), nil
}

func (m *MemoryStore) Save(s *Settings) error {
	m.mu.Lock()
	m.data = s.Clone()
	m.saves++
	m.mu.Unlock()
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	out := *s
	out.Crafts = make(map[string]*CraftSettings, len(s.Crafts))
	for k, c := range s.Crafts {
		if c == nil {
			continue
		}
		cp := *c
		out.Crafts[k] = &cp
	}
	return &out
}
