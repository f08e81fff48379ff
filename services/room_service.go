// services/room_service.go
package services

import (
	"errors"

	"club-management-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

type roomInput struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
}

func (s *RoomService) CreateRoom(c *fiber.Ctx) error {
	var input roomInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	room := &models.Room{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Location: input.Location,
		Capacity: input.Capacity,
		Active:   true,
	}
	if err := s.DB.Create(room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "room name already taken"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create room"})
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

func (s *RoomService) GetAllRooms(c *fiber.Ctx) error {
	var rooms []models.Room
	if err := s.DB.Order("name ASC").Find(&rooms).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch rooms"})
	}
	return c.JSON(rooms)
}

func (s *RoomService) GetActiveRooms(c *fiber.Ctx) error {
	var rooms []models.Room
	if err := s.DB.Where("active = ?", true).Order("name ASC").Find(&rooms).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch rooms"})
	}
	return c.JSON(rooms)
}

func (s *RoomService) GetRoomByID(c *fiber.Ctx) error {
	var room models.Room
	if err := s.DB.First(&room, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch room"})
	}
	return c.JSON(room)
}

func (s *RoomService) UpdateRoom(c *fiber.Ctx) error {
	var room models.Room
	if err := s.DB.First(&room, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch room"})
	}

	var input roomInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.Name != "" {
		room.Name = input.Name
	}
	if input.Location != "" {
		room.Location = input.Location
	}
	if input.Capacity > 0 {
		room.Capacity = input.Capacity
	}

	if err := s.DB.Save(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "room name already taken"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update room"})
	}
	return c.JSON(room)
}

// DeactivateRoom keeps the room's history but stops new scheduling into it.
func (s *RoomService) DeactivateRoom(c *fiber.Ctx) error {
	var room models.Room
	if err := s.DB.First(&room, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch room"})
	}
	if err := s.DB.Model(&room).Update("active", false).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to deactivate room"})
	}
	room.Active = false
	return c.JSON(room)
}

func (s *RoomService) DeleteRoom(c *fiber.Ctx) error {
	var room models.Room
	if err := s.DB.First(&room, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch room"})
	}

	var n int64
	if err := s.DB.Model(&models.Tournament{}).Where("room_id = ?", room.ID).Count(&n).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to check room usage"})
	}
	if n > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "room is referenced by tournaments, deactivate it instead"})
	}

	if err := s.DB.Delete(&room).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete room"})
	}
	return c.JSON(fiber.Map{"message": "room deleted"})
}
