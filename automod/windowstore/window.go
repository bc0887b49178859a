package windowstore

import (
	"slices"
	"time"
)

// Ordered (oldest-first) sequence of message timestamps for a single user.
//
// Not safe for concurrent use; callers hold a lock.
type ActivityWindow struct {
	timestamps []time.Time
}

// Inserts ts in order. Timestamps usually arrive in order, but concurrent delivery can reorder them.
func (w *ActivityWindow) Push(ts time.Time) {
	n := len(w.timestamps)
	if n == 0 || !ts.Before(w.timestamps[n-1]) {
		w.timestamps = append(w.timestamps, ts)
		return
	}
	i, _ := slices.BinarySearchFunc(w.timestamps, ts, func(a, b time.Time) int {
		return a.Compare(b)
	})
	w.timestamps = slices.Insert(w.timestamps, i, ts)
}

// Most recent timestamp in the window; zero if empty.
func (w *ActivityWindow) Newest() time.Time {
	if len(w.timestamps) == 0 {
		return time.Time{}
	}
	return w.timestamps[len(w.timestamps)-1]
}

// Drops the prefix of entries strictly older than window, relative to now. An entry exactly window old is kept.
func (w *ActivityWindow) EvictOlderThan(now time.Time, window time.Duration) {
	i := 0
	for i < len(w.timestamps) && now.Sub(w.timestamps[i]) > window {
		i++
	}
	if i == 0 {
		return
	}
	// shift down instead of re-slicing, so the backing array doesn't grow without bound
	n := copy(w.timestamps, w.timestamps[i:])
	w.timestamps = w.timestamps[:n]
}

func (w *ActivityWindow) Len() int {
	return len(w.timestamps)
}

func (w *ActivityWindow) Clear() {
	w.timestamps = w.timestamps[:0]
}

// Returns a copy of the current timestamps, oldest first.
func (w *ActivityWindow) Timestamps() []time.Time {
	return slices.Clone(w.timestamps)
}
