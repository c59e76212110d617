package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"banked/models"

	"github.com/go-redis/redis/v8"
)

const defaultKeyPrefix = "banked:leaderboard"

// LeaderboardCache stores rendered leaderboards in Redis, one key per requested size.
// Invalidate bumps a generation counter so every size goes stale at once;
// superseded keys are left to expire.
type LeaderboardCache struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

// NewLeaderboardCache creates a leaderboard cache with the given entry lifetime
func NewLeaderboardCache(client redis.Cmdable, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		client: client,
		ttl:    ttl,
		prefix: defaultKeyPrefix,
	}
}

func (c *LeaderboardCache) generationKey() string {
	return c.prefix + ":generation"
}

func (c *LeaderboardCache) entriesKey(generation int64, limit int) string {
	return fmt.Sprintf("%s:%d:%d", c.prefix, generation, limit)
}

func (c *LeaderboardCache) generation(ctx context.Context) (int64, error) {
	generation, err := c.client.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read leaderboard generation: %w", err)
	}
	return generation, nil
}

// Get returns the cached leaderboard for limit, the generation it was looked up under
// and whether it was present. Pass the generation to Set after loading on a miss.
func (c *LeaderboardCache) Get(ctx context.Context, limit int) ([]*models.LeaderboardEntry, int64, bool, error) {
	generation, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}

	raw, err := c.client.Get(ctx, c.entriesKey(generation, limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, false, nil
	}
	if err != nil {
		return nil, generation, false, fmt.Errorf("failed to read cached leaderboard: %w", err)
	}

	var entries []*models.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, generation, false, fmt.Errorf("failed to decode cached leaderboard: %w", err)
	}
	return entries, generation, true, nil
}

// Set stores a leaderboard for limit under generation. A ranking loaded before an
// Invalidate lands under the superseded generation and is never served.
func (c *LeaderboardCache) Set(ctx context.Context, generation int64, limit int, entries []*models.LeaderboardEntry) error {
	if entries == nil {
		entries = []*models.LeaderboardEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode leaderboard: %w", err)
	}

	if err := c.client.Set(ctx, c.entriesKey(generation, limit), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache leaderboard: %w", err)
	}
	return nil
}

// Invalidate drops every cached leaderboard
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate leaderboard cache: %w", err)
	}
	return nil
}
