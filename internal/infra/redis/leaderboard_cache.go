package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"adaptive-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	leaderboardKey        = "quiz:leaderboard"
	leaderboardVersionKey = "quiz:leaderboard:version"
)

// LeaderboardCache shares the computed ranking between instances. Every
// finalized attempt bumps the version key and deletes the ranking. A
// ranking loaded under an older version is never written back.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{client: client, ttl: ttl}
}

func (c *LeaderboardCache) Leaderboard(ctx context.Context, load func(context.Context) ([]domain.LeaderboardEntry, error)) ([]domain.LeaderboardEntry, error) {
	if entries, ok := c.cached(ctx); ok {
		return entries, nil
	}

	result, err, _ := c.sf.Do(leaderboardKey, func() (interface{}, error) {
		if entries, ok := c.cached(ctx); ok {
			return entries, nil
		}
		version, verr := parseVersion(c.client.Get(ctx, leaderboardVersionKey))

		entries, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if verr == nil {
			// best-effort; a failed write only costs a reload
			_ = c.store(ctx, version, entries)
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.LeaderboardEntry), nil
}

func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	c.sf.Forget(leaderboardKey)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, leaderboardVersionKey)
		pipe.Del(ctx, leaderboardKey)
		return nil
	})
	return err
}

// store writes entries only while the version key still equals version.
func (c *LeaderboardCache) store(ctx context.Context, version int64, entries []domain.LeaderboardEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := parseVersion(tx.Get(ctx, leaderboardVersionKey))
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, leaderboardKey, raw, c.ttl)
			return nil
		})
		return err
	}, leaderboardVersionKey)
}

func (c *LeaderboardCache) cached(ctx context.Context) ([]domain.LeaderboardEntry, bool) {
	raw, err := c.client.Get(ctx, leaderboardKey).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func parseVersion(cmd *redis.StringCmd) (int64, error) {
	v, err := cmd.Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}
