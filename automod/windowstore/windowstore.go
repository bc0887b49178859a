package windowstore

import (
	"context"
	"time"
)

type WindowStore interface {
	// Appends now to the user's window, evicts expired entries, and returns the resulting window size.
	Record(ctx context.Context, userID string, now time.Time) (int, error)
	Clear(ctx context.Context, userID string) error
}
