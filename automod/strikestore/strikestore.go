package strikestore

import (
	"context"
)

type StrikeStore interface {
	// Returns the current strike count for the user, or zero if the user has never been seen.
	GetStrikes(ctx context.Context, userID string) (int, error)
	// Atomically increments the user's strike count and returns the new value.
	IncrementStrikes(ctx context.Context, userID string) (int, error)
}
