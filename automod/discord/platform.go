package discord

import (
	"context"
	"log/slog"
	"time"

	"github.com/bluesky-social/hallmonitor/automod/engine"

	"github.com/bwmarrin/discordgo"
)

type Platform struct {
	Session *discordgo.Session
	Logger  *slog.Logger
}

var _ engine.Platform = (*Platform)(nil)

func NewPlatform(session *discordgo.Session, logger *slog.Logger) *Platform {
	if logger == nil {
		logger = slog.Default()
	}
	return &Platform{
		Session: session,
		Logger:  logger.With("component", "discord"),
	}
}

func (p *Platform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return wrapErr(p.Session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)))
}

// Bans without deleting any message history.
func (p *Platform) BanUser(ctx context.Context, guildID, userID, reason string) error {
	return wrapErr(p.Session.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx)))
}

// Plain channel messages can't be ephemeral, so opts.Ephemeral is ignored. DeleteAfter is handled with a timer; the deletion is best-effort and doesn't outlive the process.
func (p *Platform) SendMessage(ctx context.Context, channelID, text string, opts engine.SendOptions) error {
	msg, err := p.Session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	if err != nil {
		return wrapErr(err)
	}
	if opts.DeleteAfter > 0 && msg != nil {
		p.deleteLater(channelID, msg.ID, opts.DeleteAfter)
	}
	return nil
}

func (p *Platform) deleteLater(channelID, messageID string, after time.Duration) {
	time.AfterFunc(after, func() {
		// original request context is likely done by now
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.DeleteMessage(ctx, channelID, messageID); err != nil {
			p.Logger.Debug("failed to delete transient message", "channel", channelID, "message", messageID, "err", err)
		}
	})
}
