package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/club-leaderboard/internal/models"
	"github.com/redis/go-redis/v9"
)

// SegmentCache caches rendered leaderboard reads per segment. Entries carry
// their own stored-at stamp and are validated against an injected clock, so
// tests control staleness deterministically; the Redis TTL is a backstop.
//
// The sync pipeline invalidates a segment after rewriting its ranks, and the
// invalidation hook lets callers observe evictions.
type SegmentCache struct {
	redis *RedisCache
	ttl   time.Duration
	now   func() time.Time

	// onInvalidate, when set, fires once per evicted segment id.
	onInvalidate func(segmentID string)
}

// SegmentCacheOption customizes a SegmentCache.
type SegmentCacheOption func(*SegmentCache)

// WithClock injects a clock for staleness checks.
func WithClock(now func() time.Time) SegmentCacheOption {
	return func(c *SegmentCache) { c.now = now }
}

// WithInvalidationHook registers a callback fired on each eviction.
func WithInvalidationHook(hook func(segmentID string)) SegmentCacheOption {
	return func(c *SegmentCache) { c.onInvalidate = hook }
}

// NewSegmentCache creates a segment leaderboard cache.
func NewSegmentCache(redisCache *RedisCache, ttl time.Duration, opts ...SegmentCacheOption) *SegmentCache {
	c := &SegmentCache{
		redis: redisCache,
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type cachedLeaderboard struct {
	CachedAt time.Time                 `json:"cachedAt"`
	Entries  []models.LeaderboardEntry `json:"entries"`
}

func leaderboardKey(segmentID string) string {
	return fmt.Sprintf("leaderboard:%s", segmentID)
}

// GetLeaderboard returns the cached entries for a segment. The second return
// is false on a miss or when the stored payload is older than the TTL.
func (c *SegmentCache) GetLeaderboard(ctx context.Context, segmentID string) ([]models.LeaderboardEntry, bool, error) {
	data, err := c.redis.Get(ctx, leaderboardKey(segmentID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read leaderboard cache: %w", err)
	}

	var cached cachedLeaderboard
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached leaderboard: %w", err)
	}

	if c.now().Sub(cached.CachedAt) > c.ttl {
		return nil, false, nil
	}

	return cached.Entries, true, nil
}

// SetLeaderboard stores the entries for a segment
func (c *SegmentCache) SetLeaderboard(ctx context.Context, segmentID string, entries []models.LeaderboardEntry) error {
	payload, err := json.Marshal(cachedLeaderboard{
		CachedAt: c.now(),
		Entries:  entries,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard for cache: %w", err)
	}

	if err := c.redis.Set(ctx, leaderboardKey(segmentID), payload, c.ttl); err != nil {
		return fmt.Errorf("failed to write leaderboard cache: %w", err)
	}
	return nil
}

// Invalidate evicts the cached leaderboards for the given segments
func (c *SegmentCache) Invalidate(ctx context.Context, segmentIDs ...string) error {
	keys := make([]string, len(segmentIDs))
	for i, id := range segmentIDs {
		keys[i] = leaderboardKey(id)
	}

	if err := c.redis.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to invalidate leaderboard cache: %w", err)
	}

	if c.onInvalidate != nil {
		for _, id := range segmentIDs {
			c.onInvalidate(id)
		}
	}
	return nil
}
