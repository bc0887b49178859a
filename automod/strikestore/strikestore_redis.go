package strikestore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

var redisStrikeKey string = "strikes"

// All counts live in a single redis hash, keyed by user ID. Counts have no expiration.
type RedisStrikeStore struct {
	Client *redis.Client
}

var _ StrikeStore = (*RedisStrikeStore)(nil)

func NewRedisStrikeStore(redisURL string) (*RedisStrikeStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	rss := RedisStrikeStore{
		Client: rdb,
	}
	return &rss, nil
}

func (s *RedisStrikeStore) GetStrikes(ctx context.Context, userID string) (int, error) {
	c, err := s.Client.HGet(ctx, redisStrikeKey, userID).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return c, nil
}

func (s *RedisStrikeStore) IncrementStrikes(ctx context.Context, userID string) (int, error) {
	c, err := s.Client.HIncrBy(ctx, redisStrikeKey, userID, 1).Result()
	if err != nil {
		return 0, err
	}
	return int(c), nil
}

// Returns the full user-to-count mapping.
func (s *RedisStrikeStore) Snapshot(ctx context.Context) (map[string]int, error) {
	raw, err := s.Client.HGetAll(ctx, redisStrikeKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(raw))
	for userID, v := range raw {
		c, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("bad strike count for user %s: %w", userID, err)
		}
		out[userID] = c
	}
	return out, nil
}
