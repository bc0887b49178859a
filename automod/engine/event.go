package engine

import (
	"time"
)

// A single inbound chat message, as delivered by the platform adapter. Immutable.
type MessageEvent struct {
	MessageID string
	ChannelID string
	// Empty for direct messages
	GuildID     string
	AuthorID    string
	AuthorName  string
	AuthorIsBot bool
	Text        string
	// Arrival time; used as "now" for the activity window. Zero means the time the engine receives the event.
	Timestamp time.Time
}

func (evt *MessageEvent) InGuild() bool {
	return evt.GuildID != ""
}

// Platform mention syntax for the author, eg "<@1234>"
func (evt *MessageEvent) AuthorMention() string {
	return "<@" + evt.AuthorID + ">"
}

func (evt *MessageEvent) ChannelMention() string {
	return "<#" + evt.ChannelID + ">"
}
