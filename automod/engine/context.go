package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/bluesky-social/hallmonitor/automod/keyword"
)

// The interface exposed to rules while evaluating a single message.
type MessageContext struct {
	// Actual golang "context.Context", if needed for timeouts etc
	Ctx context.Context
	// Any errors encountered while processing methods on this struct get rolled up in this nullable field
	Err error
	// slog logger handle, with event-specific structured fields pre-populated. Pointer, but expected to never be nil.
	Logger *slog.Logger

	Event MessageEvent

	engine  *Engine // NOTE: pointer, but expected never to be nil
	verdict Verdict
}

// Creates a new context for processing a message. Exported for use in tests of rules in other packages.
func NewMessageContext(ctx context.Context, eng *Engine, evt MessageEvent) MessageContext {
	return MessageContext{
		Ctx:     ctx,
		Err:     nil,
		Logger:  eng.Logger.With("user", evt.AuthorID, "channel", evt.ChannelID),
		Event:   evt,
		engine:  eng,
		verdict: Allow(),
	}
}

func (c *MessageContext) Config() Config {
	return c.engine.Config
}

// Immutable, may be nil if no words are configured.
func (c *MessageContext) BannedWords() *keyword.BannedWords {
	return c.engine.BannedWords
}

func (c *MessageContext) Verdict() Verdict {
	return c.verdict
}

func (c *MessageContext) SetVerdict(v Verdict) {
	c.verdict = v
}

// Time used for activity tracking: the event timestamp, falling back to the current time.
func (c *MessageContext) Now() time.Time {
	if !c.Event.Timestamp.IsZero() {
		return c.Event.Timestamp
	}
	return time.Now()
}

func (c *MessageContext) setErr(err error) {
	if nil == c.Err {
		c.Err = err
	}
}

// Current strike count for the message author
func (c *MessageContext) GetStrikes() int {
	out, err := c.engine.Strikes.GetStrikes(c.Ctx, c.Event.AuthorID)
	if err != nil {
		c.setErr(err)
		return 0
	}
	return out
}

// Records a strike against the message author, returning the new count
func (c *MessageContext) IncrementStrikes() int {
	out, err := c.engine.Strikes.IncrementStrikes(c.Ctx, c.Event.AuthorID)
	if err != nil {
		c.setErr(err)
		return 0
	}
	return out
}

// Adds this message to the author's activity window, returning the window size afterwards
func (c *MessageContext) RecordActivity() int {
	out, err := c.engine.Windows.Record(c.Ctx, c.Event.AuthorID, c.Now())
	if err != nil {
		c.setErr(err)
		return 0
	}
	return out
}

func (c *MessageContext) ClearActivity() {
	if err := c.engine.Windows.Clear(c.Ctx, c.Event.AuthorID); err != nil {
		c.setErr(err)
	}
}

// Logs a single line summarizing the verdict for this message
func (c *MessageContext) CanonicalLogLine() {
	c.Logger.Info("canonical-event-line",
		"guild", c.Event.GuildID,
		"verdict", c.verdict.Kind,
		"strikes", c.verdict.Strikes,
		"windowSize", c.verdict.WindowSize,
	)
}
