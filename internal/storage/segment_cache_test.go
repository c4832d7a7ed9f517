package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/club-leaderboard/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration, opts ...SegmentCacheOption) *SegmentCache {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewSegmentCache(NewRedisCacheFromClient(client), ttl, opts...)
}

func sampleEntries() []models.LeaderboardEntry {
	name := "John Smith"
	return []models.LeaderboardEntry{
		{ID: "e1", SegmentID: "hawk-hill", Rank: 1, RiderName: &name, TimeSeconds: 380, TimeDisplay: "6:20"},
	}
}

func TestSegmentCache_RoundTrip(t *testing.T) {
	cache := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, hit, err := cache.GetLeaderboard(ctx, "hawk-hill")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.SetLeaderboard(ctx, "hawk-hill", sampleEntries()))

	entries, hit, err := cache.GetLeaderboard(ctx, "hawk-hill")
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].ID)
	assert.Equal(t, 380, entries[0].TimeSeconds)
}

func TestSegmentCache_ExpiresByInjectedClock(t *testing.T) {
	now := time.Date(2019, 7, 1, 12, 0, 0, 0, time.UTC)
	cache := newTestCache(t, time.Minute, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, cache.SetLeaderboard(ctx, "hawk-hill", sampleEntries()))

	// Within TTL: hit.
	now = now.Add(30 * time.Second)
	_, hit, err := cache.GetLeaderboard(ctx, "hawk-hill")
	require.NoError(t, err)
	assert.True(t, hit)

	// Past TTL: stale even though the key still exists in Redis.
	now = now.Add(45 * time.Second)
	_, hit, err = cache.GetLeaderboard(ctx, "hawk-hill")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSegmentCache_InvalidateFiresHook(t *testing.T) {
	var evicted []string
	cache := newTestCache(t, time.Minute, WithInvalidationHook(func(segmentID string) {
		evicted = append(evicted, segmentID)
	}))
	ctx := context.Background()

	require.NoError(t, cache.SetLeaderboard(ctx, "hawk-hill", sampleEntries()))
	require.NoError(t, cache.Invalidate(ctx, "hawk-hill", "radio-road"))

	assert.Equal(t, []string{"hawk-hill", "radio-road"}, evicted)

	_, hit, err := cache.GetLeaderboard(ctx, "hawk-hill")
	require.NoError(t, err)
	assert.False(t, hit)
}
