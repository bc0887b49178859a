package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/bluesky-social/hallmonitor/automod/keyword"
	"github.com/bluesky-social/hallmonitor/automod/natsaudit"
	"github.com/bluesky-social/hallmonitor/automod/strikestore"
	"github.com/bluesky-social/hallmonitor/util/svcutil"

	cli "github.com/urfave/cli/v2"
)

var checkCmd = &cli.Command{
	Name:      "check",
	Usage:     "check text (one message per line, from stdin or args) against the banned words list",
	ArgsUsage: `[<text>...]`,
	Action: func(cctx *cli.Context) error {
		bw, err := loadBannedWords(cctx)
		if err != nil {
			return err
		}
		if bw.Len() == 0 {
			return fmt.Errorf("no banned words configured")
		}
		if cctx.Args().Len() > 0 {
			for _, text := range cctx.Args().Slice() {
				printMatch(os.Stdout, bw, text)
			}
			return nil
		}
		return checkLines(os.Stdin, os.Stdout, bw)
	},
}

func checkLines(r io.Reader, w io.Writer, bw *keyword.BannedWords) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		printMatch(w, bw, scanner.Text())
	}
	return scanner.Err()
}

func printMatch(w io.Writer, bw *keyword.BannedWords, text string) {
	if word := bw.Match(text); word != "" {
		fmt.Fprintf(w, "BANNED\t%s\t%s\n", word, text)
	} else {
		fmt.Fprintf(w, "ok\t-\t%s\n", text)
	}
}

var strikesCmd = &cli.Command{
	Name:  "strikes",
	Usage: "print current strike counts, highest first",
	Action: func(cctx *cli.Context) error {
		ctx := context.Background()
		logger := svcutil.ConfigLogger(cctx, os.Stderr)
		config := Config{
			StrikeFile:        cctx.String("strike-file"),
			StrikeDatabaseURL: cctx.String("strike-database-url"),
			MaxDBConnections:  cctx.Int("max-db-connections"),
			RedisURL:          cctx.String("redis-url"),
			StrikeRedis:       cctx.Bool("strike-redis"),
		}

		var counts map[string]int
		if config.StrikeDatabaseURL == "" && !config.StrikeRedis {
			// read-only; don't create or rewrite the file
			c, err := strikestore.ReadStrikeFile(config.StrikeFile)
			if err != nil {
				return err
			}
			counts = c
		} else {
			store, _, closer, err := openStrikeStore(config, logger)
			if err != nil {
				return err
			}
			defer closer()
			counts, err = strikeSnapshot(ctx, store)
			if err != nil {
				return err
			}
		}
		printStrikes(os.Stdout, counts)
		return nil
	},
}

func strikeSnapshot(ctx context.Context, store strikestore.StrikeStore) (map[string]int, error) {
	switch s := store.(type) {
	case *strikestore.SQLStrikeStore:
		return s.Snapshot(ctx)
	case *strikestore.RedisStrikeStore:
		return s.Snapshot(ctx)
	case *strikestore.FileStrikeStore:
		return s.Snapshot(), nil
	case *strikestore.MemStrikeStore:
		return s.Snapshot(), nil
	default:
		return nil, fmt.Errorf("strike store does not support listing: %T", store)
	}
}

type userStrikes struct {
	UserID string
	Count  int
}

func sortedStrikes(counts map[string]int) []userStrikes {
	out := make([]userStrikes, 0, len(counts))
	for uid, n := range counts {
		out = append(out, userStrikes{UserID: uid, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func printStrikes(w io.Writer, counts map[string]int) {
	for _, us := range sortedStrikes(counts) {
		fmt.Fprintf(w, "%s\t%d\n", us.UserID, us.Count)
	}
}

var tailModlogCmd = &cli.Command{
	Name:  "tail-modlog",
	Usage: "print moderation audit records published to NATS, as JSON lines",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "subject",
			Value:   natsaudit.DefaultSubject,
			EnvVars: []string{"HALLMONITOR_NATS_SUBJECT"},
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cctx.String("nats-url") == "" {
			return fmt.Errorf("--nats-url is required")
		}
		logger := svcutil.ConfigLogger(cctx, os.Stderr)
		config := natsaudit.DefaultConfig()
		config.URL = cctx.String("nats-url")
		config.Subject = cctx.String("subject")
		config.Name = "hallmonitor-tail"
		sink, err := natsaudit.NewSink(config, logger)
		if err != nil {
			return err
		}
		defer sink.Close()

		enc := json.NewEncoder(os.Stdout)
		return sink.Tail(ctx, func(rec natsaudit.Record) {
			if err := enc.Encode(rec); err != nil {
				logger.Error("failed to print record", "err", err)
			}
		})
	},
}
