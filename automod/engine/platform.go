package engine

import (
	"context"
	"errors"
	"time"
)

// Returned (possibly wrapped) by Platform implementations when the bot lacks permission for an action.
var ErrForbidden = errors.New("forbidden")

type SendOptions struct {
	// Only visible to the recipient, where the platform supports it
	Ephemeral bool
	// If non-zero, the platform deletes the sent message after this long
	DeleteAfter time.Duration
}

// Enforcement actions against the chat platform. Implementations must be safe for concurrent use.
type Platform interface {
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	BanUser(ctx context.Context, guildID, userID, reason string) error
	SendMessage(ctx context.Context, channelID, text string, opts SendOptions) error
}

// Handles messages which passed moderation (eg, prefix commands).
type CommandProcessor interface {
	ProcessCommand(ctx context.Context, evt *MessageEvent) error
}
