package discord

import (
	"context"
	"unicode/utf8"

	"github.com/bluesky-social/hallmonitor/automod/engine"

	"github.com/bwmarrin/discordgo"
)

// Posts audit lines to a moderator channel, prefixed with "[MOD LOG]".
type ChannelAuditSink struct {
	Session *discordgo.Session
	// If empty, audit lines are dropped silently
	ChannelID string
}

var _ engine.AuditSink = (*ChannelAuditSink)(nil)

func (s *ChannelAuditSink) LogModAction(ctx context.Context, text string) error {
	if s.ChannelID == "" {
		return nil
	}
	body := truncate("[MOD LOG] "+text, engine.MaxMessageLength)
	_, err := s.Session.ChannelMessageSend(s.ChannelID, body, discordgo.WithContext(ctx))
	return wrapErr(err)
}

// Cuts text to at most max runes, marking truncation with a trailing ellipsis.
func truncate(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max-1]) + "…"
}
