package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bluesky-social/hallmonitor/automod/cachestore"
	"github.com/bluesky-social/hallmonitor/automod/commands"
	"github.com/bluesky-social/hallmonitor/automod/consumer"
	"github.com/bluesky-social/hallmonitor/automod/countstore"
	"github.com/bluesky-social/hallmonitor/automod/discord"
	"github.com/bluesky-social/hallmonitor/automod/engine"
	"github.com/bluesky-social/hallmonitor/automod/keyword"
	"github.com/bluesky-social/hallmonitor/automod/natsaudit"
	"github.com/bluesky-social/hallmonitor/automod/rules"
	"github.com/bluesky-social/hallmonitor/automod/strikestore"
	"github.com/bluesky-social/hallmonitor/automod/windowstore"
	"github.com/bluesky-social/hallmonitor/internal/ticker"
	"github.com/bluesky-social/hallmonitor/pkg/env"
	"github.com/bluesky-social/hallmonitor/pkg/robusthttp"
	"github.com/bluesky-social/hallmonitor/util/cliutil"

	"github.com/bwmarrin/discordgo"
	"gorm.io/plugin/opentelemetry/tracing"
)

// how long resolved role and member names are cached for moderator commands
var guildCacheTTL = 5 * time.Minute

type Server struct {
	logger   *slog.Logger
	config   Config
	engine   *engine.Engine
	windows  *windowstore.MemWindowStore
	consumer *consumer.DiscordConsumer

	strikeBackend string
	closers       []func() error
}

type Config struct {
	DiscordToken      string
	GuildID           string
	ModLogChannelID   string
	BannedWords       *keyword.BannedWords
	CommandPrefix     string
	Engine            engine.Config
	WindowCapacity    int
	Parallelism       int
	StrikeFile        string
	StrikeDatabaseURL string
	MaxDBConnections  int
	RedisURL          string
	StrikeRedis       bool
	SlackWebhookURL   string
	NATSURL           string
	Logger            *slog.Logger
}

func NewServer(ctx context.Context, config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	if config.DiscordToken == "" {
		return nil, fmt.Errorf("discord bot token is required")
	}
	if config.GuildID == "" {
		return nil, fmt.Errorf("guild ID is required")
	}
	if err := config.Engine.Validate(); err != nil {
		return nil, err
	}

	srv := &Server{
		logger: logger,
		config: config,
	}

	strikes, backend, closer, err := openStrikeStore(config, logger)
	if err != nil {
		return nil, err
	}
	srv.strikeBackend = backend
	srv.addCloser(closer)

	var counters countstore.CountStore
	if config.RedisURL != "" {
		rcs, err := countstore.NewRedisCountStore(config.RedisURL)
		if err != nil {
			srv.Close()
			return nil, fmt.Errorf("could not configure redis counters: %w", err)
		}
		srv.addCloser(rcs.Client.Close)
		counters = rcs
	} else {
		counters = countstore.NewMemCountStore()
	}

	var cache cachestore.CacheStore
	if config.RedisURL != "" {
		rcs, err := cachestore.NewRedisCacheStore(config.RedisURL, guildCacheTTL)
		if err != nil {
			srv.Close()
			return nil, fmt.Errorf("could not configure redis cache: %w", err)
		}
		srv.addCloser(rcs.Client.Close)
		cache = rcs
	} else {
		cache = cachestore.NewMemCacheStore(1_000, guildCacheTTL)
	}

	capacity := config.WindowCapacity
	if capacity <= 0 {
		capacity = windowstore.DefaultCapacity
	}
	srv.windows = windowstore.NewMemWindowStore(config.Engine.SpamWindow, capacity)

	session, err := discordgo.New("Bot " + config.DiscordToken)
	if err != nil {
		srv.Close()
		return nil, fmt.Errorf("creating discord session: %w", err)
	}

	audit := engine.MultiAuditSink{
		&discord.ChannelAuditSink{
			Session:   session,
			ChannelID: config.ModLogChannelID,
		},
	}
	if config.SlackWebhookURL != "" {
		audit = append(audit, &engine.SlackAuditSink{
			WebhookURL: config.SlackWebhookURL,
			Client:     robusthttp.NewClient(robusthttp.WithLogger(logger)),
		})
	}
	if config.NATSURL != "" {
		natsConfig := natsaudit.DefaultConfig()
		natsConfig.URL = config.NATSURL
		natsConfig.GuildID = config.GuildID
		sink, err := natsaudit.NewSink(natsConfig, logger)
		if err != nil {
			srv.Close()
			return nil, fmt.Errorf("could not configure nats audit sink: %w", err)
		}
		srv.addCloser(sink.Close)
		audit = append(audit, sink)
	}

	proc := commands.NewProcessor(config.CommandPrefix, &discord.Guild{
		Session: session,
		Cache:   cache,
		Logger:  logger,
	}, audit, logger)

	srv.engine = &engine.Engine{
		Logger:      logger,
		Config:      config.Engine,
		Rules:       rules.DefaultRules(),
		BannedWords: config.BannedWords,
		Strikes:     strikes,
		Windows:     srv.windows,
		Counters:    counters,
		Platform:    discord.NewPlatform(session, logger),
		Audit:       audit,
		Commands:    proc,
	}

	srv.consumer = &consumer.DiscordConsumer{
		Logger:      logger.With("component", "consumer"),
		Engine:      srv.engine,
		Session:     session,
		GuildID:     config.GuildID,
		Parallelism: config.Parallelism,
	}
	return srv, nil
}

// Picks the strike backend: database if configured, then redis (when requested), otherwise the JSON file.
func openStrikeStore(config Config, logger *slog.Logger) (strikestore.StrikeStore, string, func() error, error) {
	noop := func() error { return nil }
	switch {
	case config.StrikeDatabaseURL != "":
		db, err := cliutil.SetupDatabase(config.StrikeDatabaseURL, config.MaxDBConnections)
		if err != nil {
			return nil, "", nil, fmt.Errorf("could not open strike database: %w", err)
		}
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, "", nil, err
		}
		sqldb, err := db.DB()
		if err != nil {
			return nil, "", nil, err
		}
		store, err := strikestore.NewSQLStrikeStore(db)
		if err != nil {
			sqldb.Close()
			return nil, "", nil, fmt.Errorf("could not migrate strike database: %w", err)
		}
		return store, "database", sqldb.Close, nil
	case config.StrikeRedis:
		if config.RedisURL == "" {
			return nil, "", nil, fmt.Errorf("redis strike store requires a redis URL")
		}
		store, err := strikestore.NewRedisStrikeStore(config.RedisURL)
		if err != nil {
			return nil, "", nil, fmt.Errorf("could not configure redis strike store: %w", err)
		}
		return store, "redis", store.Client.Close, nil
	default:
		return strikestore.NewFileStrikeStore(config.StrikeFile, logger), "file", noop, nil
	}
}

func (s *Server) addCloser(f func() error) {
	if f != nil {
		s.closers = append(s.closers, f)
	}
}

// Logs the effective configuration. Secrets (token, URLs with credentials) are never included.
func (s *Server) LogConfigSummary() {
	c := s.config
	s.logger.Info("hallmonitor configuration",
		"version", env.Version,
		"devBuild", env.IsDev(),
		"guild", c.GuildID,
		"modLogChannel", c.ModLogChannelID,
		"bannedWords", c.BannedWords.Len(),
		"spamWindow", c.Engine.SpamWindow.String(),
		"spamMessageLimit", c.Engine.SpamMessageLimit,
		"strikesToBan", c.Engine.StrikesToBan,
		"banQuotaHour", c.Engine.BanQuotaHour,
		"commandPrefix", c.CommandPrefix,
		"greetingTrigger", c.Engine.GreetingTrigger,
		"strikeBackend", s.strikeBackend,
		"redis", c.RedisURL != "",
		"slack", c.SlackWebhookURL != "",
		"nats", c.NATSURL != "",
	)
	if c.ModLogChannelID == "" {
		s.logger.Warn("no mod log channel configured, audit lines only go to the process log")
	}
	if c.BannedWords.Len() == 0 {
		s.logger.Warn("no banned words configured, profanity filter is inactive")
	}
}

// Connects to the gateway and processes messages until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		if err := ticker.Periodically(ctx, 10*time.Second, s.updateGauges); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("gauge updates stopped", "err", err)
		}
	}()
	return s.consumer.Run(ctx)
}

func (s *Server) updateGauges(ctx context.Context) error {
	trackedWindows.Set(float64(s.windows.Len()))
	if last := s.consumer.LastEventAt(); !last.IsZero() {
		lastEventAge.Set(time.Since(last).Seconds())
	}
	return nil
}

// Health check for the /ping endpoint.
func (s *Server) Healthy() error {
	if s.consumer == nil || !s.consumer.Ready() {
		return fmt.Errorf("discord gateway not ready")
	}
	return nil
}

func (s *Server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("error during shutdown", "err", err)
		}
	}
	s.closers = nil
}
