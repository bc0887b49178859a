package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bluesky-social/hallmonitor/automod/countstore"
	"github.com/bluesky-social/hallmonitor/automod/keyword"
	"github.com/bluesky-social/hallmonitor/automod/strikestore"
	"github.com/bluesky-social/hallmonitor/automod/windowstore"

	"github.com/puzpuzpuz/xsync/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// runtime for evaluating message rules, managing per-user state, and carrying out enforcement actions.
//
// Always used by pointer. Logger, Strikes, Windows and Platform must not be nil; Counters, Audit and Commands are optional.
type Engine struct {
	Logger      *slog.Logger
	Config      Config
	Rules       RuleSet
	BannedWords *keyword.BannedWords
	Strikes     strikestore.StrikeStore
	Windows     windowstore.WindowStore
	// used for the ban circuit breaker (optional)
	Counters countstore.CountStore
	Platform Platform
	// moderation audit trail, in addition to the engine's own log lines (optional)
	Audit AuditSink
	// receives messages which pass moderation (optional)
	Commands CommandProcessor

	locksOnce sync.Once
	userLocks *xsync.MapOf[string, *userLock]
}

type userLock struct {
	mu sync.Mutex
	// number of goroutines holding or waiting on mu; only read or written inside userLocks.Compute
	refs int
}

// Serializes processing per user, so that window and strike updates for one user are never interleaved.
//
// Entries are reference counted and dropped once no goroutine holds or waits on them, so the map only holds active users.
func (eng *Engine) lockUser(userID string) func() {
	eng.locksOnce.Do(func() {
		eng.userLocks = xsync.NewMapOf[string, *userLock]()
	})
	lk, _ := eng.userLocks.Compute(userID, func(old *userLock, loaded bool) (*userLock, bool) {
		if !loaded {
			old = &userLock{}
		}
		old.refs++
		return old, false
	})
	lk.mu.Lock()
	return func() {
		lk.mu.Unlock()
		eng.userLocks.Compute(userID, func(old *userLock, loaded bool) (*userLock, bool) {
			if !loaded {
				return old, true
			}
			old.refs--
			return old, old.refs <= 0
		})
	}
}

// Runs a single inbound message through policy evaluation and enforcement.
//
// Only rule (store) failures are returned as errors. Failed enforcement actions are logged and counted, but never returned or retried.
func (eng *Engine) ProcessMessage(ctx context.Context, evt MessageEvent) error {
	// similar to an HTTP server, we want to recover any panics from rule execution
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("automod event execution exception", "err", r, "user", evt.AuthorID, "channel", evt.ChannelID)
			eventErrorCount.WithLabelValues("message").Inc()
		}
	}()

	if evt.AuthorIsBot {
		eventSkipCount.WithLabelValues("bot").Inc()
		return nil
	}

	ctx, span := otel.Tracer("automod").Start(ctx, "ProcessMessage")
	defer span.End()
	span.SetAttributes(
		attribute.String("user", evt.AuthorID),
		attribute.String("channel", evt.ChannelID),
		attribute.Bool("guild", evt.InGuild()),
	)

	eventProcessCount.WithLabelValues("message").Inc()
	start := time.Now()
	defer func() {
		duration := time.Since(start)
		eventProcessDuration.WithLabelValues("message").Observe(duration.Seconds())
	}()

	unlock := eng.lockUser(evt.AuthorID)
	defer unlock()

	c := NewMessageContext(ctx, eng, evt)
	c.Logger.Debug("processing message")
	if err := eng.Rules.CallMessageRules(&c); err != nil {
		eventErrorCount.WithLabelValues("message").Inc()
		span.RecordError(err)
		return fmt.Errorf("evaluating message rules: %w", err)
	}
	c.CanonicalLogLine()

	v := c.Verdict()
	span.SetAttributes(attribute.String("verdict", string(v.Kind)))
	switch v.Kind {
	case VerdictProfanity:
		verdictCount.WithLabelValues(string(VerdictProfanity)).Inc()
		eng.enforceProfanity(&c, v)
	case VerdictSpam:
		verdictCount.WithLabelValues(string(VerdictSpam)).Inc()
		eng.enforceSpam(&c, v)
	default:
		verdictCount.WithLabelValues(string(VerdictAllow)).Inc()
		eng.handleAllowed(&c)
	}
	return nil
}
