// services/audit.go
package services

import (
	"errors"
	"fmt"

	"club-management-system/logging"
	"club-management-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditService records human-readable trail entries. Writes are best-effort:
// a failed audit insert is logged and swallowed so it can never roll back
// the operation that produced it.
type AuditService struct {
	DB  *gorm.DB
	log *zap.Logger
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{DB: db, log: logging.L().Named("audit")}
}

// Log writes one audit entry. userID may be nil for system actions.
func (s *AuditService) Log(actionType string, userID *string, details, ipAddress string) {
	entry := &models.AuditLog{
		ID:         uuid.NewString(),
		ActionType: actionType,
		UserID:     userID,
		Details:    details,
		IPAddress:  ipAddress,
	}
	if err := s.DB.Create(entry).Error; err != nil {
		s.log.Warn("audit write failed",
			zap.String("action_type", actionType), zap.Error(err))
	}
}

func (s *AuditService) LogRatingUpdate(playerID string, oldRating, newRating int) {
	details := fmt.Sprintf("Rating changed from %d to %d (%+d)", oldRating, newRating, newRating-oldRating)
	s.Log(models.ActionRatingUpdate, &playerID, details, "")
}

func (s *AuditService) LogMemberAdded(actorID *string, username, ip string) {
	s.Log(models.ActionMemberAdded, actorID, fmt.Sprintf("Member %s added", username), ip)
}

func (s *AuditService) LogMemberRemoved(actorID *string, username, ip string) {
	s.Log(models.ActionMemberRemoved, actorID, fmt.Sprintf("Member %s removed", username), ip)
}

func (s *AuditService) LogRoleChanged(actorID *string, username, roles, ip string) {
	s.Log(models.ActionRoleChanged, actorID, fmt.Sprintf("Roles of %s changed to %s", username, roles), ip)
}

func (s *AuditService) LogTournamentCreated(organizerID *string, name, ip string) {
	s.Log(models.ActionTournamentCreated, organizerID, fmt.Sprintf("Tournament '%s' created", name), ip)
}

func (s *AuditService) LogTournamentUpdated(actorID *string, name, ip string) {
	s.Log(models.ActionTournamentUpdated, actorID, fmt.Sprintf("Tournament '%s' updated", name), ip)
}

func (s *AuditService) LogGameApproved(actorID *string, gameID, ip string) {
	s.Log(models.ActionGameApproved, actorID, fmt.Sprintf("Game %s approved", gameID), ip)
}

// --- Query endpoints (admin) ---

// GetAllAuditLogs returns the newest entries first, capped at 500.
func (s *AuditService) GetAllAuditLogs(c *fiber.Ctx) error {
	var logs []models.AuditLog
	if err := s.DB.Order("timestamp DESC").Limit(500).Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch audit logs"})
	}
	return c.JSON(logs)
}

func (s *AuditService) GetAuditLogsByUser(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch user"})
	}

	var logs []models.AuditLog
	if err := s.DB.Where("user_id = ?", userID).Order("timestamp DESC").Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch audit logs"})
	}
	return c.JSON(logs)
}

func (s *AuditService) GetAuditLogsByAction(c *fiber.Ctx) error {
	actionType := c.Params("action_type")

	var logs []models.AuditLog
	if err := s.DB.Where("action_type = ?", actionType).Order("timestamp DESC").Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch audit logs"})
	}
	return c.JSON(logs)
}
