// services/rating_queries.go
package services

import (
	"errors"

	"club-management-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Read side of the rating ledger. The ledger itself is only ever written by
// EloRatingService; these handlers expose it.

// GetPlayerRatingHistory returns every transition for a player, newest first.
func (s *EloRatingService) GetPlayerRatingHistory(c *fiber.Ctx) error {
	playerID := c.Params("player_id")

	var player models.User
	if err := s.DB.First(&player, "id = ?", playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch player"})
	}

	var history []models.RatingHistory
	if err := s.DB.Where("player_id = ?", playerID).Order("changed_at DESC").Find(&history).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch rating history"})
	}
	return c.JSON(history)
}

// GetGameRatingChanges returns the (at most two) transitions a game produced.
func (s *EloRatingService) GetGameRatingChanges(c *fiber.Ctx) error {
	gameID := c.Params("game_id")

	var history []models.RatingHistory
	if err := s.DB.Where("game_id = ?", gameID).Find(&history).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch rating changes"})
	}
	return c.JSON(history)
}

// AdjustPlayerRating is the admin endpoint behind manual corrections.
func (s *EloRatingService) AdjustPlayerRating(c *fiber.Ctx) error {
	var input struct {
		PlayerID  string `json:"player_id"`
		NewRating int    `json:"new_rating"`
		Reason    string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.PlayerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "player_id is required"})
	}

	trans, err := s.ApplyManualAdjustment(c.Context(), input.PlayerID, input.NewRating, input.Reason)
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(trans)
}
