package consumer

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/bluesky-social/hallmonitor/automod/engine"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func testMessage(guildID, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   guildID,
		Content:   content,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Author: &discordgo.User{
			ID:            "111",
			Username:      "alice",
			Discriminator: "0",
		},
	}
}

func TestMessageEventFromDiscord(t *testing.T) {
	assert := assert.New(t)

	evt := MessageEventFromDiscord(testMessage("g1", "hello"))
	assert.Equal(engine.MessageEvent{
		MessageID:  "m1",
		ChannelID:  "c1",
		GuildID:    "g1",
		AuthorID:   "111",
		AuthorName: "alice",
		Text:       "hello",
		Timestamp:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}, evt)
	assert.True(evt.InGuild())

	msg := testMessage("", "hi")
	msg.Author.Bot = true
	evt = MessageEventFromDiscord(msg)
	assert.True(evt.AuthorIsBot)
	assert.False(evt.InGuild())
}

func TestDiscordConsumerHandleMessage(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := engine.EngineTestFixture()
	plat := eng.Platform.(*engine.MockPlatform)
	dc := DiscordConsumer{
		Logger:  slog.Default(),
		Engine:  eng,
		GuildID: "g1",
	}
	assert.True(dc.LastEventAt().IsZero())

	// other guilds are ignored
	assert.NoError(dc.HandleMessage(ctx, testMessage("g2", "badword")))
	assert.Empty(plat.Deleted())
	assert.False(dc.LastEventAt().IsZero())

	// no author
	assert.NoError(dc.HandleMessage(ctx, &discordgo.Message{ID: "x"}))

	assert.NoError(dc.HandleMessage(ctx, testMessage("g1", "badword")))
	assert.Equal([]string{"m1"}, plat.Deleted())

	// direct messages are processed
	assert.NoError(dc.HandleMessage(ctx, testMessage("", "heck")))
	assert.Len(plat.Deleted(), 2)
}

func TestDiscordConsumerParallelism(t *testing.T) {
	assert := assert.New(t)

	eng := engine.EngineTestFixture()
	dc := DiscordConsumer{
		Logger:      slog.Default(),
		Engine:      eng,
		GuildID:     "g1",
		Parallelism: 2,
	}
	dc.sema = make(chan struct{}, dc.Parallelism)

	dc.HandleMessageCreate(nil, &discordgo.MessageCreate{Message: testMessage("g1", "hello")})
	// slot is released after processing
	assert.Len(dc.sema, 0)
}

func TestDiscordConsumerReady(t *testing.T) {
	assert := assert.New(t)

	dc := DiscordConsumer{Logger: slog.Default()}
	assert.False(dc.Ready())

	dc.HandleReady(nil, &discordgo.Ready{User: &discordgo.User{ID: "999", Username: "hallmonitor"}})
	assert.True(dc.Ready())

	// read concurrently with gateway updates; run with `-race`
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = dc.Ready()
		}
	}()
	dc.HandleDisconnect(nil, &discordgo.Disconnect{})
	<-done
	assert.False(dc.Ready())

	// missing user in the ready payload is tolerated
	dc.HandleReady(nil, &discordgo.Ready{})
	assert.True(dc.Ready())
}
