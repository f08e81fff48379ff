// services/tournament_service.go
package services

import (
	"errors"
	"time"

	"club-management-system/logging"
	"club-management-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TournamentService struct {
	DB    *gorm.DB
	Audit *AuditService
	log   *zap.Logger
}

func NewTournamentService(db *gorm.DB, audit *AuditService) *TournamentService {
	return &TournamentService{DB: db, Audit: audit, log: logging.L().Named("tournaments")}
}

func validTournamentStatus(status string) bool {
	switch status {
	case models.TournamentDraft, models.TournamentRegistration,
		models.TournamentOngoing, models.TournamentCompleted, models.TournamentCancelled:
		return true
	}
	return false
}

type tournamentInput struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	RoomID          *string    `json:"room_id"`
	MaxParticipants int        `json:"max_participants"`
}

func (s *TournamentService) CreateTournament(c *fiber.Ctx) error {
	organizerID, _ := c.Locals("user_id").(string)
	if organizerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}

	var input tournamentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date before start_date"})
	}

	if input.RoomID != nil {
		var room models.Room
		if err := s.DB.First(&room, "id = ?", *input.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch room"})
		}
		if !room.Active {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "room is not active"})
		}
	}

	tournament := &models.Tournament{
		ID:              uuid.NewString(),
		Name:            input.Name,
		Slug:            uniqueSlug(s.DB, &models.Tournament{}, input.Name),
		Description:     input.Description,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		RoomID:          input.RoomID,
		MaxParticipants: input.MaxParticipants,
		Status:          models.TournamentDraft,
		OrganizerID:     organizerID,
	}

	if err := s.DB.Create(tournament).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create tournament"})
	}

	s.Audit.LogTournamentCreated(&organizerID, tournament.Name, c.IP())
	return c.Status(fiber.StatusCreated).JSON(tournament)
}

func (s *TournamentService) GetAllTournaments(c *fiber.Ctx) error {
	var tournaments []models.Tournament
	if err := s.DB.Order("created_at DESC").Find(&tournaments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch tournaments"})
	}
	return c.JSON(tournaments)
}

func (s *TournamentService) GetTournamentByID(c *fiber.Ctx) error {
	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch tournament"})
	}
	return c.JSON(tournament)
}

func (s *TournamentService) GetTournamentsByStatus(c *fiber.Ctx) error {
	status := c.Params("status")
	if !validTournamentStatus(status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid status"})
	}
	var tournaments []models.Tournament
	if err := s.DB.Where("status = ?", status).Order("created_at DESC").Find(&tournaments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch tournaments"})
	}
	return c.JSON(tournaments)
}

func (s *TournamentService) UpdateTournament(c *fiber.Ctx) error {
	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch tournament"})
	}

	var input tournamentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if input.Name != "" {
		tournament.Name = input.Name
	}
	if input.Description != "" {
		tournament.Description = input.Description
	}
	if input.StartDate != nil {
		tournament.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		tournament.EndDate = input.EndDate
	}
	if input.MaxParticipants > 0 {
		tournament.MaxParticipants = input.MaxParticipants
	}
	if input.RoomID != nil {
		var room models.Room
		if err := s.DB.First(&room, "id = ?", *input.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch room"})
		}
		tournament.RoomID = input.RoomID
	}

	if err := s.DB.Save(&tournament).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update tournament"})
	}

	actorID, _ := c.Locals("user_id").(string)
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	s.Audit.LogTournamentUpdated(actor, tournament.Name, c.IP())
	return c.JSON(tournament)
}

// UpdateTournamentStatus moves a tournament along its lifecycle.
func (s *TournamentService) UpdateTournamentStatus(c *fiber.Ctx) error {
	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if !validTournamentStatus(input.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid status"})
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch tournament"})
	}

	if err := s.DB.Model(&tournament).Update("status", input.Status).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update status"})
	}
	tournament.Status = input.Status
	return c.JSON(tournament)
}

func (s *TournamentService) DeleteTournament(c *fiber.Ctx) error {
	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch tournament"})
	}
	if err := s.DB.Delete(&tournament).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete tournament"})
	}
	return c.JSON(fiber.Map{"message": "tournament deleted"})
}

// uniqueSlug derives a URL slug from name and suffixes it when taken.
func uniqueSlug(db *gorm.DB, model interface{}, name string) string {
	base := slug.Make(name)
	candidate := base
	for i := 0; ; i++ {
		var n int64
		if err := db.Model(model).Where("slug = ?", candidate).Count(&n).Error; err != nil || n == 0 {
			return candidate
		}
		candidate = base + "-" + uuid.NewString()[:8]
		if i > 3 {
			return candidate
		}
	}
}
