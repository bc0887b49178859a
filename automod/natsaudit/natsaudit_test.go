package natsaudit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRecordJSON(t *testing.T) {
	assert := assert.New(t)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	rec := NewRecord("guild1", "Banned alice for spamming (5 msgs in 7s).", now)
	_, err := uuid.Parse(rec.ID)
	assert.NoError(err)
	assert.Equal(time.UTC, rec.CreatedAt.Location())

	b, err := json.Marshal(rec)
	assert.NoError(err)
	var raw map[string]any
	assert.NoError(json.Unmarshal(b, &raw))
	assert.Equal("guild1", raw["guild_id"])
	assert.Equal("Banned alice for spamming (5 msgs in 7s).", raw["text"])
	assert.Equal("2024-05-01T17:00:00Z", raw["created_at"])

	// ids are unique per record
	assert.NotEqual(rec.ID, NewRecord("guild1", "x", now).ID)
}

func TestSinkPublish(t *testing.T) {
	t.Skip("live test, need nats running locally")
	assert := assert.New(t)

	cfg := DefaultConfig()
	cfg.Subject = "hallmonitor.test"
	cfg.GuildID = "guild1"
	sink, err := NewSink(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got := make(chan Record, 1)
	go func() {
		_ = sink.Tail(ctx, func(r Record) { got <- r })
	}()
	time.Sleep(100 * time.Millisecond)
	assert.NoError(sink.LogModAction(ctx, "hello"))
	select {
	case rec := <-got:
		assert.Equal("hello", rec.Text)
	case <-ctx.Done():
		t.Fatal("timed out waiting for record")
	}
}
