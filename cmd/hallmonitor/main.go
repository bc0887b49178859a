package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bluesky-social/hallmonitor/automod/engine"
	"github.com/bluesky-social/hallmonitor/automod/keyword"
	"github.com/bluesky-social/hallmonitor/automod/setstore"
	"github.com/bluesky-social/hallmonitor/pkg/env"
	"github.com/bluesky-social/hallmonitor/pkg/metrics"
	"github.com/bluesky-social/hallmonitor/util/svcutil"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "hallmonitor",
		Usage:   "chat moderation daemon (keeps the halls tidy)",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			Value:   "info",
			EnvVars: []string{"HALLMONITOR_LOG_LEVEL", "LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "banned-words",
			Usage:   "comma-separated list of banned words (case-insensitive substring match)",
			EnvVars: []string{"BANNED_WORDS"},
		},
		&cli.StringFlag{
			Name:    "sets-json-path",
			Usage:   "file path of JSON file containing static sets (extra banned words go in the \"banned-words\" set)",
			EnvVars: []string{"HALLMONITOR_SETS_JSON_PATH"},
		},
		&cli.StringFlag{
			Name:    "strike-file",
			Usage:   "path of JSON file holding per-user strike counts",
			Value:   "strikes.json",
			EnvVars: []string{"STRIKE_FILE"},
		},
		&cli.StringFlag{
			Name:    "strike-database-url",
			Usage:   "database for strike counts, instead of the strike file (sqlite:// or postgres://)",
			EnvVars: []string{"STRIKE_DATABASE_URL"},
		},
		&cli.IntFlag{
			Name:    "max-db-connections",
			EnvVars: []string{"MAX_DB_CONNECTIONS"},
			Value:   10,
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL, for quota counters (and optionally strikes)",
			EnvVars: []string{"HALLMONITOR_REDIS_URL", "REDIS_URL"},
		},
		&cli.BoolFlag{
			Name:    "strike-redis",
			Usage:   "keep strike counts in redis (requires --redis-url)",
			EnvVars: []string{"HALLMONITOR_STRIKE_REDIS"},
		},
		&cli.StringFlag{
			Name:    "nats-url",
			Usage:   "NATS server to publish moderation audit records to (optional)",
			EnvVars: []string{"NATS_URL"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
		checkCmd,
		strikesCmd,
		tailModlogCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "connect to discord and moderate messages",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "discord-bot-token",
			Usage:    "discord bot token",
			Required: true,
			EnvVars:  []string{"DISCORD_BOT_TOKEN"},
		},
		&cli.StringFlag{
			Name:     "guild-id",
			Usage:    "ID of the discord guild (server) to moderate",
			Required: true,
			EnvVars:  []string{"GUILD_ID", "DISCORD_GUILD_ID"},
		},
		&cli.StringFlag{
			Name:    "mod-log-channel-id",
			Usage:   "channel ID for moderation audit messages (optional)",
			EnvVars: []string{"MOD_LOG_CHANNEL_ID"},
		},
		&cli.IntFlag{
			Name:    "spam-time-window",
			Usage:   "sliding window for spam detection, in seconds",
			Value:   7,
			EnvVars: []string{"SPAM_TIME_WINDOW"},
		},
		&cli.IntFlag{
			Name:    "spam-message-limit",
			Usage:   "number of messages within the spam window which counts as spam",
			Value:   5,
			EnvVars: []string{"SPAM_MESSAGE_LIMIT"},
		},
		&cli.IntFlag{
			Name:    "strikes-to-ban",
			Usage:   "profanity strikes before a user is banned",
			Value:   3,
			EnvVars: []string{"STRIKES_TO_BAN"},
		},
		&cli.StringFlag{
			Name:    "command-prefix",
			Usage:   "prefix for moderator commands",
			Value:   "!",
			EnvVars: []string{"COMMAND_PREFIX"},
		},
		&cli.StringFlag{
			Name:    "greeting-trigger",
			Usage:   "messages starting with this text get a greeting (empty to disable)",
			Value:   "Hey",
			EnvVars: []string{"GREETING_TRIGGER"},
		},
		&cli.IntFlag{
			Name:    "ban-quota-hour",
			Usage:   "max automated bans per hour; zero for no limit",
			Value:   0,
			EnvVars: []string{"BAN_QUOTA_HOUR"},
		},
		&cli.IntFlag{
			Name:    "window-capacity",
			Usage:   "max number of users with tracked activity windows",
			Value:   50_000,
			EnvVars: []string{"HALLMONITOR_WINDOW_CAPACITY"},
		},
		&cli.IntFlag{
			Name:    "parallelism",
			Usage:   "max messages processed concurrently",
			Value:   64,
			EnvVars: []string{"HALLMONITOR_PARALLELISM"},
		},
		&cli.StringFlag{
			Name:    "slack-webhook-url",
			Usage:   "slack incoming webhook for moderation audit messages (optional)",
			EnvVars: []string{"SLACK_WEBHOOK_URL"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3989",
			EnvVars: []string{"HALLMONITOR_METRICS_LISTEN"},
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := svcutil.ConfigLogger(cctx, os.Stdout)
		env.Version = versioninfo.Short()

		shutdownOTEL, err := configOTEL(ctx, "hallmonitor")
		if err != nil {
			return err
		}
		defer shutdownOTEL()

		config, err := configFromCLI(cctx)
		if err != nil {
			return err
		}
		config.Logger = logger

		srv, err := NewServer(ctx, config)
		if err != nil {
			return err
		}
		defer srv.Close()
		srv.LogConfigSummary()

		metricsCtx, metricsCancel := context.WithCancel(ctx)
		go func() {
			if err := metrics.RunServer(metricsCtx, metricsCancel, cctx.String("metrics-listen"), srv.Healthy); err != nil {
				logger.Error("failed to start metrics endpoint", "err", err)
				stop()
			}
		}()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("failed to run moderation service: %w", err)
		}
		return nil
	},
}

// Parses a discord snowflake ID; empty string is allowed (and returned as-is) only if !required.
func parseSnowflake(name, val string, required bool) (string, error) {
	if val == "" {
		if required {
			return "", fmt.Errorf("%s is required", name)
		}
		return "", nil
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid %s %q: %w", name, val, err)
	}
	if id == 0 {
		if required {
			return "", fmt.Errorf("%s must be non-zero", name)
		}
		return "", nil
	}
	return strconv.FormatUint(id, 10), nil
}

func configFromCLI(cctx *cli.Context) (Config, error) {
	guildID, err := parseSnowflake("guild-id", cctx.String("guild-id"), true)
	if err != nil {
		return Config{}, err
	}
	modLogChannelID, err := parseSnowflake("mod-log-channel-id", cctx.String("mod-log-channel-id"), false)
	if err != nil {
		return Config{}, err
	}
	bannedWords, err := loadBannedWords(cctx)
	if err != nil {
		return Config{}, err
	}
	if cctx.Bool("strike-redis") && cctx.String("redis-url") == "" {
		return Config{}, fmt.Errorf("--strike-redis requires --redis-url")
	}
	engineConfig := engine.Config{
		SpamWindow:       time.Duration(cctx.Int("spam-time-window")) * time.Second,
		SpamMessageLimit: cctx.Int("spam-message-limit"),
		StrikesToBan:     cctx.Int("strikes-to-ban"),
		GreetingTrigger:  cctx.String("greeting-trigger"),
		BanQuotaHour:     cctx.Int("ban-quota-hour"),
	}
	if err := engineConfig.Validate(); err != nil {
		return Config{}, err
	}
	return Config{
		DiscordToken:      cctx.String("discord-bot-token"),
		GuildID:           guildID,
		ModLogChannelID:   modLogChannelID,
		BannedWords:       bannedWords,
		CommandPrefix:     cctx.String("command-prefix"),
		Engine:            engineConfig,
		WindowCapacity:    cctx.Int("window-capacity"),
		Parallelism:       cctx.Int("parallelism"),
		StrikeFile:        cctx.String("strike-file"),
		StrikeDatabaseURL: cctx.String("strike-database-url"),
		MaxDBConnections:  cctx.Int("max-db-connections"),
		RedisURL:          cctx.String("redis-url"),
		StrikeRedis:       cctx.Bool("strike-redis"),
		SlackWebhookURL:   cctx.String("slack-webhook-url"),
		NATSURL:           cctx.String("nats-url"),
	}, nil
}

// Combines BANNED_WORDS with the "banned-words" set from the sets file, if one is configured.
func loadBannedWords(cctx *cli.Context) (*keyword.BannedWords, error) {
	words := strings.Split(cctx.String("banned-words"), ",")
	if p := cctx.String("sets-json-path"); p != "" {
		sets := setstore.NewMemSetStore()
		if err := sets.LoadFromFileJSON(p); err != nil {
			return nil, fmt.Errorf("loading sets file: %w", err)
		}
		words = append(words, sets.Members(setstore.BannedWordsSet)...)
	}
	return keyword.NewBannedWords(words), nil
}
