// services/user_service.go
package services

import (
	"errors"
	"strconv"
	"strings"

	"club-management-system/logging"
	"club-management-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	DB          *gorm.DB
	Audit       *AuditService
	Leaderboard *LeaderboardCache // may be nil
	log         *zap.Logger
}

func NewUserService(db *gorm.DB, audit *AuditService, leaderboard *LeaderboardCache) *UserService {
	return &UserService{DB: db, Audit: audit, Leaderboard: leaderboard, log: logging.L().Named("users")}
}

// userResponse hides the password hash and exposes the rating state.
type userResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Roles       string `json:"roles"`
	Rating      int    `json:"rating"`
	GamesPlayed int    `json:"games_played"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Roles:       u.Roles,
		Rating:      u.Rating,
		GamesPlayed: u.GamesPlayed,
	}
}

// CreateUser registers a club member. New members start at the initial
// rating with zero games played.
func (s *UserService) CreateUser(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username, email and password are required"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to hash password"})
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		FullName:     input.FullName,
		Roles:        models.RoleMember,
		Rating:       InitialRating,
		GamesPlayed:  0,
	}

	if err := s.DB.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "username or email already taken"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create user"})
	}

	actorID, _ := c.Locals("user_id").(string)
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	s.Audit.LogMemberAdded(actor, user.Username, c.IP())

	if err := s.Leaderboard.SetRating(c.Context(), user.ID, user.Rating); err != nil {
		s.log.Warn("leaderboard insert failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
}

func (s *UserService) GetAllUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := s.DB.Order("username ASC").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch users"})
	}
	res := make([]userResponse, len(users))
	for i := range users {
		res[i] = toUserResponse(&users[i])
	}
	return c.JSON(res)
}

func (s *UserService) GetUserByID(c *fiber.Ctx) error {
	var user models.User
	if err := s.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch user"})
	}
	return c.JSON(toUserResponse(&user))
}

// GetMe resolves the gateway-provided identity.
func (s *UserService) GetMe(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch user"})
	}
	return c.JSON(toUserResponse(&user))
}

// GetLeaderboard serves the top ratings from the redis cache, falling back
// to the database when the cache is absent or empty.
func (s *UserService) GetLeaderboard(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 10
	}

	if entries, err := s.Leaderboard.Top(c.Context(), limit); err != nil {
		s.log.Warn("leaderboard cache read failed, falling back to DB", zap.Error(err))
	} else if len(entries) > 0 {
		ids := make([]string, len(entries))
		for i, e := range entries {
			ids[i] = e.PlayerID
		}
		var users []models.User
		if err := s.DB.Where("id IN ?", ids).Find(&users).Error; err == nil {
			byID := make(map[string]*models.User, len(users))
			for i := range users {
				byID[users[i].ID] = &users[i]
			}
			res := make([]userResponse, 0, len(entries))
			for _, e := range entries {
				if u, ok := byID[e.PlayerID]; ok {
					res = append(res, toUserResponse(u))
				}
			}
			if len(res) > 0 {
				return c.JSON(res)
			}
		}
	}

	var users []models.User
	if err := s.DB.Order("rating DESC").Limit(limit).Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch leaderboard"})
	}
	res := make([]userResponse, len(users))
	for i := range users {
		res[i] = toUserResponse(&users[i])
	}
	return c.JSON(res)
}

// UpdateUser changes profile fields. Rating and games-played are owned by
// the rating service and cannot be set here; role changes are audited.
func (s *UserService) UpdateUser(c *fiber.Ctx) error {
	var user models.User
	if err := s.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch user"})
	}

	var input struct {
		Email    *string `json:"email"`
		FullName *string `json:"full_name"`
		Roles    *string `json:"roles"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if input.Email != nil {
		updates["email"] = strings.TrimSpace(*input.Email)
	}
	if input.FullName != nil {
		updates["full_name"] = *input.FullName
	}
	rolesChanged := false
	if input.Roles != nil && *input.Roles != user.Roles {
		for _, r := range strings.Split(*input.Roles, ",") {
			switch strings.TrimSpace(r) {
			case models.RoleMember, models.RoleManager, models.RoleAdmin:
			default:
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid role: " + r})
			}
		}
		updates["roles"] = *input.Roles
		rolesChanged = true
	}
	if len(updates) == 0 {
		return c.JSON(toUserResponse(&user))
	}

	if err := s.DB.Model(&user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email already taken"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update user"})
	}
	if err := s.DB.First(&user, "id = ?", user.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to reload user"})
	}

	if rolesChanged {
		actorID, _ := c.Locals("user_id").(string)
		var actor *string
		if actorID != "" {
			actor = &actorID
		}
		s.Audit.LogRoleChanged(actor, user.Username, user.Roles, c.IP())
	}
	return c.JSON(toUserResponse(&user))
}

func (s *UserService) DeleteUser(c *fiber.Ctx) error {
	var user models.User
	if err := s.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch user"})
	}

	if err := s.DB.Delete(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete user"})
	}

	actorID, _ := c.Locals("user_id").(string)
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	s.Audit.LogMemberRemoved(actor, user.Username, c.IP())

	if err := s.Leaderboard.Remove(c.Context(), user.ID); err != nil {
		s.log.Warn("leaderboard removal failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	return c.JSON(fiber.Map{"message": "user deleted"})
}
