package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the library in process memory. Load returns a deep
// copy so callers cannot mutate the stored value.
type MemoryStore struct {
	mu  sync.RWMutex
	lib *Library
}

// NewMemoryStore creates a store holding lib. A nil lib loads Default().
func NewMemoryStore(lib *Library) *MemoryStore {
	s := &MemoryStore{}
	if lib != nil {
		s.lib = lib.Clone()
	}
	return s
}

func (s *MemoryStore) Load(ctx context.Context) (*Library, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lib == nil {
		return Default(), nil
	}
	return s.lib.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, lib *Library) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lib = lib.Clone()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
