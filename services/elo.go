// services/elo.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"club-management-system/logging"
	"club-management-system/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Rating policy. Kept as named constants so the club can retune volatility
// without touching the formula itself.
const (
	InitialRating = 1200

	// Players at or below this many games use the provisional K-factor.
	ProvisionalGameLimit = 30
	ProvisionalKFactor   = 24
	EstablishedKFactor   = 16
)

// Actual scores for the three possible results of a game.
const (
	ScoreWin  = 1.0
	ScoreLoss = 0.0
	ScoreDraw = 0.5
)

var (
	// ErrSamePlayer rejects outcomes that reference one player twice.
	// Processing them would double-count that player's games.
	ErrSamePlayer = errors.New("outcome references the same player twice")

	// ErrPlayerNotFound means one of the referenced club members does not exist.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrAlreadyRated means rating transitions for this game were already
	// committed; reprocessing would double-apply the changes.
	ErrAlreadyRated = errors.New("game already has rating transitions")

	// ErrConcurrentUpdate is returned when the guarded updates kept losing
	// against concurrent outcomes for the same player.
	ErrConcurrentUpdate = errors.New("player state changed concurrently, gave up retrying")
)

// errStaleRead aborts a transaction whose pre-read player state was
// overtaken by a concurrent outcome. Internal; callers never see it.
var errStaleRead = errors.New("stale player read")

// casRetryLimit bounds internal retries after a stale read. Persistence
// failures are never retried here; that stays a caller decision.
const casRetryLimit = 3

// ExpectedScore returns the probability-like expected result in (0,1) for a
// player against the given opponent rating.
// ExpectedScore(a,b) + ExpectedScore(b,a) == 1.
func ExpectedScore(rating, opponentRating int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(opponentRating-rating)/400.0))
}

// NewRating applies the rating formula and rounds to the nearest integer,
// ties away from zero (math.Round). No floor or ceiling is imposed.
func NewRating(currentRating, kFactor int, actualScore, expectedScore float64) int {
	return int(math.Round(float64(currentRating) + float64(kFactor)*(actualScore-expectedScore)))
}

// KFactorFor maps a player's experience to their volatility coefficient,
// using the games-played count from before the game being rated.
func KFactorFor(gamesPlayed int) int {
	if gamesPlayed <= ProvisionalGameLimit {
		return ProvisionalKFactor
	}
	return EstablishedKFactor
}

// EloRatingService turns a finished game's outcome into new ratings for both
// participants, a games-played increment each, and two append-only
// RatingHistory entries, all inside one transaction. Audit and leaderboard
// notifications happen after commit and are best-effort.
type EloRatingService struct {
	DB          *gorm.DB
	Audit       *AuditService
	Leaderboard *LeaderboardCache // may be nil when redis is not configured
	log         *zap.Logger
}

func NewEloRatingService(db *gorm.DB, audit *AuditService, leaderboard *LeaderboardCache) *EloRatingService {
	return &EloRatingService{
		DB:          db,
		Audit:       audit,
		Leaderboard: leaderboard,
		log:         logging.L().Named("elo"),
	}
}

// ApplyDecisiveResult rates a game with a clear winner and loser.
// Returns the winner's and loser's ledger entries.
func (s *EloRatingService) ApplyDecisiveResult(ctx context.Context, winnerID, loserID string, gameID *string) (*models.RatingHistory, *models.RatingHistory, error) {
	return s.applyOutcome(ctx, winnerID, loserID, ScoreWin, gameID)
}

// ApplyDrawResult rates a drawn game; both players score 0.5.
func (s *EloRatingService) ApplyDrawResult(ctx context.Context, playerAID, playerBID string, gameID *string) (*models.RatingHistory, *models.RatingHistory, error) {
	return s.applyOutcome(ctx, playerAID, playerBID, ScoreDraw, gameID)
}

func (s *EloRatingService) applyOutcome(ctx context.Context, idA, idB string, scoreA float64, gameID *string) (*models.RatingHistory, *models.RatingHistory, error) {
	if idA == idB {
		return nil, nil, ErrSamePlayer
	}

	for attempt := 0; attempt < casRetryLimit; attempt++ {
		transA, transB, err := s.tryApplyOutcome(ctx, idA, idB, scoreA, gameID)
		if errors.Is(err, errStaleRead) {
			s.log.Debug("stale player read, retrying outcome",
				zap.String("player_a", idA), zap.String("player_b", idB), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost a race against another delivery of the same game:
				// its transitions are committed, ours must not be.
				return nil, nil, ErrAlreadyRated
			}
			return nil, nil, err
		}
		s.notifyApplied(ctx, transA, transB)
		return transA, transB, nil
	}
	return nil, nil, ErrConcurrentUpdate
}

// tryApplyOutcome runs one attempt of the transactional unit: read both
// players, compute, write both players, append both ledger entries. The
// guarded UPDATEs make the read-compute-write safe against concurrent
// outcomes touching the same player without holding row locks across the
// computation.
func (s *EloRatingService) tryApplyOutcome(ctx context.Context, idA, idB string, scoreA float64, gameID *string) (*models.RatingHistory, *models.RatingHistory, error) {
	var transA, transB *models.RatingHistory

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		playerA, err := lockFreeLoadPlayer(tx, idA)
		if err != nil {
			return err
		}
		playerB, err := lockFreeLoadPlayer(tx, idB)
		if err != nil {
			return err
		}

		if gameID != nil {
			var n int64
			if err := tx.Model(&models.RatingHistory{}).Where("game_id = ?", *gameID).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return ErrAlreadyRated
			}
		}

		// K-factors come from pre-update experience for both players.
		kA := KFactorFor(playerA.GamesPlayed)
		kB := KFactorFor(playerB.GamesPlayed)

		expectedA := ExpectedScore(playerA.Rating, playerB.Rating)
		expectedB := 1 - expectedA

		newA := NewRating(playerA.Rating, kA, scoreA, expectedA)
		newB := NewRating(playerB.Rating, kB, 1-scoreA, expectedB)

		if err := guardedRatingUpdate(tx, playerA, newA); err != nil {
			return err
		}
		if err := guardedRatingUpdate(tx, playerB, newB); err != nil {
			return err
		}

		transA = newTransition(playerA, newA, kA, gameID)
		transB = newTransition(playerB, newB, kB, gameID)
		if err := tx.Create(transA).Error; err != nil {
			return err
		}
		if err := tx.Create(transB).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return transA, transB, nil
}

// ApplyManualAdjustment sets a player's rating outside of any game (board
// decisions, imports). It appends a ledger entry with no game reference and
// does not touch the games-played counter.
func (s *EloRatingService) ApplyManualAdjustment(ctx context.Context, playerID string, newRating int, reason string) (*models.RatingHistory, error) {
	var trans *models.RatingHistory

	for attempt := 0; attempt < casRetryLimit; attempt++ {
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			player, err := lockFreeLoadPlayer(tx, playerID)
			if err != nil {
				return err
			}
			res := tx.Model(&models.User{}).
				Where("id = ? AND rating = ? AND games_played = ?", player.ID, player.Rating, player.GamesPlayed).
				Update("rating", newRating)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errStaleRead
			}
			trans = newTransition(player, newRating, 0, nil)
			return tx.Create(trans).Error
		})
		if errors.Is(err, errStaleRead) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.log.Info("manual rating adjustment",
			zap.String("player_id", playerID),
			zap.Int("old_rating", trans.OldRating),
			zap.Int("new_rating", trans.NewRating),
			zap.String("reason", reason))
		s.notifyApplied(ctx, trans)
		return trans, nil
	}
	return nil, ErrConcurrentUpdate
}

func lockFreeLoadPlayer(tx *gorm.DB, id string) (*models.User, error) {
	var player models.User
	if err := tx.First(&player, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
		}
		return nil, err
	}
	return &player, nil
}

// guardedRatingUpdate writes the new rating and bumps games-played, but only
// if the row still matches the state we computed from. Zero rows affected
// means a concurrent outcome got there first.
func guardedRatingUpdate(tx *gorm.DB, player *models.User, newRating int) error {
	res := tx.Model(&models.User{}).
		Where("id = ? AND rating = ? AND games_played = ?", player.ID, player.Rating, player.GamesPlayed).
		Updates(map[string]interface{}{
			"rating":       newRating,
			"games_played": player.GamesPlayed + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errStaleRead
	}
	return nil
}

func newTransition(player *models.User, newRating, kFactor int, gameID *string) *models.RatingHistory {
	return &models.RatingHistory{
		ID:           uuid.NewString(),
		PlayerID:     player.ID,
		OldRating:    player.Rating,
		NewRating:    newRating,
		RatingChange: newRating - player.Rating,
		KFactor:      kFactor,
		GameID:       gameID,
	}
}

// notifyApplied runs the post-commit side channels: audit trail and the
// redis leaderboard. Failures here are logged and never propagate; the
// rating update is already durable.
func (s *EloRatingService) notifyApplied(ctx context.Context, transitions ...*models.RatingHistory) {
	for _, t := range transitions {
		if t == nil {
			continue
		}
		if s.Audit != nil {
			s.Audit.LogRatingUpdate(t.PlayerID, t.OldRating, t.NewRating)
		}
		if err := s.Leaderboard.SetRating(ctx, t.PlayerID, t.NewRating); err != nil {
			s.log.Warn("leaderboard update failed",
				zap.String("player_id", t.PlayerID), zap.Error(err))
		}
		s.log.Info("rating updated",
			zap.String("player_id", t.PlayerID),
			zap.Int("old_rating", t.OldRating),
			zap.Int("new_rating", t.NewRating),
			zap.Int("k_factor", t.KFactor))
	}
}
