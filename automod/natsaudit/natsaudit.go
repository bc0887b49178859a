// Publishes moderation audit records to a NATS subject, so other services (dashboards, archivers) can follow the mod log.
package natsaudit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/bluesky-social/hallmonitor/automod/engine"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const DefaultSubject = "hallmonitor.modlog"

// Wire format of a single audit record.
type Record struct {
	ID        string    `json:"id"`
	GuildID   string    `json:"guild_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Config struct {
	URL           string
	Subject       string
	GuildID       string
	Name          string
	ReconnectWait time.Duration
	// -1 for infinite reconnects
	MaxReconnects int
}

func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Subject:       DefaultSubject,
		Name:          "hallmonitor",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
	}
}

type Sink struct {
	Subject string
	GuildID string
	Logger  *slog.Logger

	conn *nats.Conn
}

var _ engine.AuditSink = (*Sink)(nil)

// Connects to NATS. Returns an error if the initial connection fails; later disconnects are retried in the background.
func NewSink(config Config, logger *slog.Logger) (*Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "natsaudit")
	if config.Subject == "" {
		config.Subject = DefaultSubject
	}
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("nats connection closed")
		}),
	}
	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	logger.Info("nats connected", "url", nc.ConnectedUrl(), "subject", config.Subject)
	return &Sink{
		Subject: config.Subject,
		GuildID: config.GuildID,
		Logger:  logger,
		conn:    nc,
	}, nil
}

func NewRecord(guildID, text string, now time.Time) Record {
	return Record{
		ID:        uuid.New().String(),
		GuildID:   guildID,
		Text:      text,
		CreatedAt: now.UTC(),
	}
}

func (s *Sink) LogModAction(ctx context.Context, text string) error {
	b, err := json.Marshal(NewRecord(s.GuildID, text, time.Now()))
	if err != nil {
		return err
	}
	if err := s.conn.Publish(s.Subject, b); err != nil {
		return fmt.Errorf("nats publish %s: %w", s.Subject, err)
	}
	return nil
}

// Calls handler for every record published on the sink's subject, until the context is cancelled. Malformed messages are logged and skipped.
func (s *Sink) Tail(ctx context.Context, handler func(Record)) error {
	sub, err := s.conn.Subscribe(s.Subject, func(msg *nats.Msg) {
		var rec Record
		if err := json.Unmarshal(msg.Data, &rec); err != nil {
			s.Logger.Warn("skipping malformed audit record", "err", err)
			return
		}
		handler(rec)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", s.Subject, err)
	}
	<-ctx.Done()
	return sub.Unsubscribe()
}

// Flushes pending publishes and closes the connection.
func (s *Sink) Close() error {
	return s.conn.Drain()
}
