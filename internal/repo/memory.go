package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/loopspot/loopspot/internal/domain"
)

// memoryLoopStore keeps records in a map. Used for tests and for
// STORE_DRIVER=memory, where nothing survives a restart.
type memoryLoopStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore returns an empty in-memory LoopStore.
func NewMemoryStore() LoopStore {
	return &memoryLoopStore{records: make(map[string][]byte)}
}

func (s *memoryLoopStore) Get(_ context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("repo.memoryLoopStore.Get: %w", domain.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (s *memoryLoopStore) Set(_ context.Context, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[id] = append([]byte(nil), data...)
	return nil
}

func (s *memoryLoopStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("repo.memoryLoopStore.Delete: %w", domain.ErrNotFound)
	}
	delete(s.records, id)
	return nil
}

func (s *memoryLoopStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
