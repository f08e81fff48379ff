// services/leaderboard.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "club:leaderboard:rating"

// LeaderboardEntry is one row of the rating leaderboard.
type LeaderboardEntry struct {
	PlayerID string `json:"player_id"`
	Rating   int    `json:"rating"`
}

// LeaderboardCache mirrors current ratings into a redis sorted set so the
// leaderboard endpoint doesn't hit Postgres on every request. All methods
// are nil-receiver safe: without redis the cache is simply absent and
// callers fall back to the database.
type LeaderboardCache struct {
	rdb *redis.Client
}

func NewLeaderboardCache(redisURL string) (*LeaderboardCache, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &LeaderboardCache{rdb: rdb}, nil
}

func (c *LeaderboardCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// SetRating upserts a single player's score.
func (c *LeaderboardCache) SetRating(ctx context.Context, playerID string, rating int) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(rating), Member: playerID}).Err()
}

// Remove drops a player from the leaderboard (account deletion).
func (c *LeaderboardCache) Remove(ctx context.Context, playerID string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.ZRem(ctx, leaderboardKey, playerID).Err()
}

// Top returns up to limit entries, highest rating first. A nil cache or an
// empty set returns (nil, nil) so callers know to fall back to the DB.
func (c *LeaderboardCache) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if c == nil || c.rdb == nil {
		return nil, nil
	}
	zs, err := c.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, LeaderboardEntry{PlayerID: id, Rating: int(z.Score)})
	}
	return entries, nil
}

// Rebuild atomically replaces the whole sorted set. Used by the periodic
// worker to correct any drift from missed post-commit updates.
func (c *LeaderboardCache) Rebuild(ctx context.Context, entries []LeaderboardEntry) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	members := make([]redis.Z, 0, len(entries))
	for _, e := range entries {
		members = append(members, redis.Z{Score: float64(e.Rating), Member: e.PlayerID})
	}

	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, leaderboardKey)
	if len(members) > 0 {
		pipe.ZAdd(ctx, leaderboardKey, members...)
	}
	_, err := pipe.Exec(ctx)
	return err
}
