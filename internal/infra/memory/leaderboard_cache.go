package memory

import (
	"context"
	"sync"
	"time"

	"adaptive-quiz-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

const leaderboardKey = "leaderboard"

// LeaderboardCache memoizes the ranking in process. Concurrent misses share
// one load.
type LeaderboardCache struct {
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	mu        sync.RWMutex
	entries   []domain.LeaderboardEntry
	valid     bool
	expiresAt time.Time
	// gen changes on every Invalidate. A load started under an older
	// generation is returned to its caller but never cached.
	gen uint64
}

// NewLeaderboardCache keeps a loaded ranking for ttl, or until the next
// invalidation when ttl is not positive.
func NewLeaderboardCache(ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{ttl: ttl, clock: time.Now}
}

func (c *LeaderboardCache) Leaderboard(ctx context.Context, load func(context.Context) ([]domain.LeaderboardEntry, error)) ([]domain.LeaderboardEntry, error) {
	if entries, ok := c.cached(); ok {
		return entries, nil
	}

	result, err, _ := c.sf.Do(leaderboardKey, func() (interface{}, error) {
		if entries, ok := c.cached(); ok {
			return entries, nil
		}
		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()

		entries, err := load(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.entries = entries
			c.valid = true
			if c.ttl > 0 {
				c.expiresAt = c.clock().Add(c.ttl)
			}
		}
		c.mu.Unlock()
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return copyEntries(result.([]domain.LeaderboardEntry)), nil
}

func (c *LeaderboardCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	c.entries = nil
	c.valid = false
	c.gen++
	c.mu.Unlock()
	c.sf.Forget(leaderboardKey)
	return nil
}

func (c *LeaderboardCache) cached() ([]domain.LeaderboardEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid || (c.ttl > 0 && !c.expiresAt.After(c.clock())) {
		return nil, false
	}
	return copyEntries(c.entries), true
}

func copyEntries(entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	return append([]domain.LeaderboardEntry{}, entries...)
}
