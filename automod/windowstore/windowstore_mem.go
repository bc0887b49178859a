package windowstore

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const DefaultCapacity = 50_000

// In-process windows, bounded by an expiring LRU keyed by user ID.
//
// Entries are re-added on every Record, which resets their TTL, so only users who have gone quiet for the idle period are dropped. Dropping an idle window loses nothing: every timestamp in it would be evicted by the user's next Record anyway, as long as the TTL is longer than the window.
type MemWindowStore struct {
	Window time.Duration

	lk   sync.Mutex
	data *expirable.LRU[string, *ActivityWindow]
}

var _ WindowStore = (*MemWindowStore)(nil)

// Idle TTL defaults to ten times the window, with a floor of one minute. A capacity of zero or less uses DefaultCapacity.
func NewMemWindowStore(window time.Duration, capacity int) *MemWindowStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	ttl := max(10*window, time.Minute)
	return &MemWindowStore{
		Window: window,
		data:   expirable.NewLRU[string, *ActivityWindow](capacity, nil, ttl),
	}
}

func (s *MemWindowStore) Record(ctx context.Context, userID string, now time.Time) (int, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	w, ok := s.data.Get(userID)
	if !ok {
		w = &ActivityWindow{}
	}
	w.Push(now)
	// a late-arriving older message doesn't move the window backwards
	w.EvictOlderThan(w.Newest(), s.Window)
	s.data.Add(userID, w)
	return w.Len(), nil
}

func (s *MemWindowStore) Clear(ctx context.Context, userID string) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	if w, ok := s.data.Peek(userID); ok {
		w.Clear()
	}
	return nil
}

// Returns a copy of the user's current window, oldest first. Does not evict.
func (s *MemWindowStore) Timestamps(userID string) []time.Time {
	s.lk.Lock()
	defer s.lk.Unlock()
	w, ok := s.data.Peek(userID)
	if !ok {
		return nil
	}
	return w.Timestamps()
}

// Number of users currently tracked.
func (s *MemWindowStore) Len() int {
	return s.data.Len()
}
