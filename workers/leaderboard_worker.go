package workers

import (
	"context"
	"time"

	"club-management-system/logging"
	"club-management-system/models"
	"club-management-system/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LeaderboardSyncer periodically rebuilds the Redis leaderboard from the
// users table so the cache recovers from missed best-effort updates and
// Redis restarts.
type LeaderboardSyncer struct {
	DB    *gorm.DB
	Cache *services.LeaderboardCache
	log   *zap.Logger
}

func NewLeaderboardSyncer(db *gorm.DB, cache *services.LeaderboardCache) *LeaderboardSyncer {
	return &LeaderboardSyncer{
		DB:    db,
		Cache: cache,
		log:   logging.L().Named("leaderboard_syncer"),
	}
}

func (s *LeaderboardSyncer) rebuildOnce(ctx context.Context) error {
	var users []models.User
	if err := s.DB.WithContext(ctx).
		Select("id", "rating").
		Find(&users).Error; err != nil {
		return err
	}

	entries := make([]services.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, services.LeaderboardEntry{
			PlayerID: u.ID,
			Rating:   u.Rating,
		})
	}

	if err := s.Cache.Rebuild(ctx, entries); err != nil {
		return err
	}
	s.log.Debug("leaderboard rebuilt", zap.Int("players", len(entries)))
	return nil
}

// Run polls until ctx is cancelled. The first rebuild happens immediately
// so a fresh Redis instance is populated before the next tick.
func (s *LeaderboardSyncer) Run(ctx context.Context, pollInterval time.Duration) {
	if s.Cache == nil {
		s.log.Info("leaderboard cache disabled, syncer not running")
		return
	}

	s.log.Info("starting leaderboard syncer", zap.Duration("interval", pollInterval))

	if err := s.rebuildOnce(ctx); err != nil {
		s.log.Warn("initial leaderboard rebuild failed", zap.Error(err))
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("leaderboard syncer stopped")
			return
		case <-ticker.C:
			if err := s.rebuildOnce(ctx); err != nil {
				s.log.Warn("leaderboard rebuild failed", zap.Error(err))
			}
		}
	}
}
