package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bluesky-social/hallmonitor/automod/countstore"
	"github.com/bluesky-social/hallmonitor/automod/keyword"
	"github.com/bluesky-social/hallmonitor/automod/strikestore"
	"github.com/bluesky-social/hallmonitor/automod/windowstore"
)

var _ MessageRuleFunc = simpleProfanityRule
var _ MessageRuleFunc = simpleSpamRule

func simpleProfanityRule(c *MessageContext) error {
	if c.BannedWords() == nil {
		return nil
	}
	if w := c.BannedWords().Match(c.Event.Text); w != "" {
		c.SetVerdict(Profanity(c.IncrementStrikes(), w))
	}
	return nil
}

func simpleSpamRule(c *MessageContext) error {
	n := c.RecordActivity()
	if n >= c.Config().SpamMessageLimit {
		c.ClearActivity()
		c.SetVerdict(Spam(n))
	}
	return nil
}

// Engine with in-memory stores, mock platform and audit sink, and simple profanity and spam rules. Banned words are "badword" and "heck".
func EngineTestFixture() *Engine {
	rules := RuleSet{
		MessageRules: []MessageRuleFunc{
			simpleProfanityRule,
			simpleSpamRule,
		},
	}
	cfg := DefaultConfig()
	engine := Engine{
		Logger:      slog.Default(),
		Config:      cfg,
		Rules:       rules,
		BannedWords: keyword.NewBannedWords([]string{"badword", "heck"}),
		Strikes:     strikestore.NewMemStrikeStore(),
		Windows:     windowstore.NewMemWindowStore(cfg.SpamWindow, 100),
		Counters:    countstore.NewMemCountStore(),
		Platform:    NewMockPlatform(),
		Audit:       &MockAuditSink{},
	}
	return &engine
}

type MockBan struct {
	GuildID string
	UserID  string
	Reason  string
}

type MockMessage struct {
	ChannelID string
	Text      string
	Opts      SendOptions
}

// In-memory Platform which records every action. Set the error fields to simulate failures.
type MockPlatform struct {
	DeleteErr error
	BanErr    error
	SendErr   error

	lk       sync.Mutex
	deleted  []string
	bans     []MockBan
	messages []MockMessage
}

var _ Platform = (*MockPlatform)(nil)

func NewMockPlatform() *MockPlatform {
	return &MockPlatform{}
}

func (p *MockPlatform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	p.lk.Lock()
	defer p.lk.Unlock()
	if p.DeleteErr != nil {
		return p.DeleteErr
	}
	p.deleted = append(p.deleted, messageID)
	return nil
}

func (p *MockPlatform) BanUser(ctx context.Context, guildID, userID, reason string) error {
	p.lk.Lock()
	defer p.lk.Unlock()
	if p.BanErr != nil {
		return p.BanErr
	}
	p.bans = append(p.bans, MockBan{GuildID: guildID, UserID: userID, Reason: reason})
	return nil
}

func (p *MockPlatform) SendMessage(ctx context.Context, channelID, text string, opts SendOptions) error {
	p.lk.Lock()
	defer p.lk.Unlock()
	if p.SendErr != nil {
		return p.SendErr
	}
	p.messages = append(p.messages, MockMessage{ChannelID: channelID, Text: text, Opts: opts})
	return nil
}

// IDs of deleted messages, in order
func (p *MockPlatform) Deleted() []string {
	p.lk.Lock()
	defer p.lk.Unlock()
	return append([]string{}, p.deleted...)
}

func (p *MockPlatform) Bans() []MockBan {
	p.lk.Lock()
	defer p.lk.Unlock()
	return append([]MockBan{}, p.bans...)
}

func (p *MockPlatform) Messages() []MockMessage {
	p.lk.Lock()
	defer p.lk.Unlock()
	return append([]MockMessage{}, p.messages...)
}

type MockAuditSink struct {
	Err error

	lk    sync.Mutex
	lines []string
}

var _ AuditSink = (*MockAuditSink)(nil)

func (s *MockAuditSink) LogModAction(ctx context.Context, text string) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.lines = append(s.lines, text)
	return nil
}

func (s *MockAuditSink) Lines() []string {
	s.lk.Lock()
	defer s.lk.Unlock()
	return append([]string{}, s.lines...)
}

// Records every message passed to it.
type MockCommandProcessor struct {
	Err error

	lk     sync.Mutex
	events []MessageEvent
}

var _ CommandProcessor = (*MockCommandProcessor)(nil)

func (m *MockCommandProcessor) ProcessCommand(ctx context.Context, evt *MessageEvent) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.events = append(m.events, *evt)
	return m.Err
}

func (m *MockCommandProcessor) Events() []MessageEvent {
	m.lk.Lock()
	defer m.lk.Unlock()
	return append([]MessageEvent{}, m.events...)
}

// Helper for building guild message events in tests. Message IDs are derived from the timestamp.
func TestMessage(userID, text string, ts time.Time) MessageEvent {
	return MessageEvent{
		MessageID:  "msg-" + userID + "-" + ts.Format("150405.000000"),
		ChannelID:  "chan1",
		GuildID:    "guild1",
		AuthorID:   userID,
		AuthorName: "user" + userID,
		Text:       text,
		Timestamp:  ts,
	}
}
