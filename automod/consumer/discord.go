package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bluesky-social/hallmonitor/automod/engine"

	"github.com/bwmarrin/discordgo"
)

// Gateway intents needed to see guild and direct messages, including their text.
var DiscordIntents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildMembers

// Feeds discord gateway message events in to the engine.
type DiscordConsumer struct {
	Logger  *slog.Logger
	Engine  *engine.Engine
	Session *discordgo.Session
	// Messages from other guilds are ignored. Direct messages are always processed.
	GuildID string
	// Max messages processed concurrently; extra events wait. Zero means unbounded.
	Parallelism int

	ctx  context.Context
	sema chan struct{}

	// unix milliseconds of the most recent message received. use atomics when reading or updating.
	lastEventMillis atomic.Int64
	// set by the gateway Ready event, cleared on disconnect
	ready atomic.Bool
}

func (dc *DiscordConsumer) Run(ctx context.Context) error {
	if dc.Engine == nil {
		return fmt.Errorf("nil engine")
	}
	if dc.Session == nil {
		return fmt.Errorf("nil discord session")
	}
	dc.ctx = ctx
	if dc.Parallelism > 0 {
		dc.sema = make(chan struct{}, dc.Parallelism)
	}

	dc.Session.Identify.Intents = DiscordIntents
	removeReady := dc.Session.AddHandler(dc.HandleReady)
	defer removeReady()
	removeDisconnect := dc.Session.AddHandler(dc.HandleDisconnect)
	defer removeDisconnect()
	removeMessage := dc.Session.AddHandler(dc.HandleMessageCreate)
	defer removeMessage()

	dc.Logger.Info("opening discord gateway session", "guild", dc.GuildID)
	if err := dc.Session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway session: %w", err)
	}

	<-ctx.Done()
	dc.ready.Store(false)
	dc.Logger.Info("closing discord gateway session")
	if err := dc.Session.Close(); err != nil {
		return fmt.Errorf("closing discord gateway session: %w", err)
	}
	return nil
}

func (dc *DiscordConsumer) HandleReady(s *discordgo.Session, r *discordgo.Ready) {
	dc.ready.Store(true)
	user := ""
	if r.User != nil {
		user = r.User.String()
	}
	dc.Logger.Info("connected to discord gateway", "user", user, "guilds", len(r.Guilds))
}

func (dc *DiscordConsumer) HandleDisconnect(s *discordgo.Session, d *discordgo.Disconnect) {
	dc.ready.Store(false)
	dc.Logger.Warn("disconnected from discord gateway")
}

// True once the gateway session is established, until the next disconnect. Safe to call from any goroutine.
func (dc *DiscordConsumer) Ready() bool {
	return dc.ready.Load()
}

// Handler for discordgo message events. Called concurrently by discordgo.
func (dc *DiscordConsumer) HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx := dc.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if dc.sema != nil {
		select {
		case dc.sema <- struct{}{}:
		case <-ctx.Done():
			return
		}
		defer func() { <-dc.sema }()
	}
	if err := dc.HandleMessage(ctx, m.Message); err != nil {
		dc.Logger.Error("engine failed to process message", "err", err, "channel", m.ChannelID, "message", m.ID)
	}
}

// NOTE: only returns engine (rule) errors; malformed or out-of-scope events are logged and skipped.
func (dc *DiscordConsumer) HandleMessage(ctx context.Context, msg *discordgo.Message) error {
	if msg == nil || msg.Author == nil {
		dc.Logger.Debug("skipping message event without author")
		return nil
	}
	dc.lastEventMillis.Store(time.Now().UnixMilli())
	messagesReceived.Inc()

	if msg.GuildID != "" && dc.GuildID != "" && msg.GuildID != dc.GuildID {
		messagesSkipped.WithLabelValues("other-guild").Inc()
		return nil
	}
	return dc.Engine.ProcessMessage(ctx, MessageEventFromDiscord(msg))
}

// Time the most recent message event was received; zero if none yet.
func (dc *DiscordConsumer) LastEventAt() time.Time {
	ms := dc.lastEventMillis.Load()
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func MessageEventFromDiscord(msg *discordgo.Message) engine.MessageEvent {
	evt := engine.MessageEvent{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
		GuildID:   msg.GuildID,
		Text:      msg.Content,
		Timestamp: msg.Timestamp,
	}
	if msg.Author != nil {
		evt.AuthorID = msg.Author.ID
		evt.AuthorName = msg.Author.String()
		evt.AuthorIsBot = msg.Author.Bot
	}
	return evt
}
