package strikestore

import (
	"context"
	"maps"
	"sync"
)

type MemStrikeStore struct {
	lk     sync.Mutex
	counts map[string]int
}

var _ StrikeStore = (*MemStrikeStore)(nil)

func NewMemStrikeStore() *MemStrikeStore {
	return &MemStrikeStore{
		counts: make(map[string]int),
	}
}

func (s *MemStrikeStore) GetStrikes(ctx context.Context, userID string) (int, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.counts[userID], nil
}

func (s *MemStrikeStore) IncrementStrikes(ctx context.Context, userID string) (int, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.counts[userID]++
	return s.counts[userID], nil
}

// Returns a copy of the full user-to-count mapping.
func (s *MemStrikeStore) Snapshot() map[string]int {
	s.lk.Lock()
	defer s.lk.Unlock()
	return maps.Clone(s.counts)
}
