// services/puzzle_service.go
package services

import (
	"errors"
	"time"

	"club-management-system/logging"
	"club-management-system/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PuzzleService struct {
	DB  *gorm.DB
	log *zap.Logger
}

func NewPuzzleService(db *gorm.DB) *PuzzleService {
	return &PuzzleService{DB: db, log: logging.L().Named("puzzles")}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// GetTodaysPuzzle returns the puzzle scheduled for today.
func (s *PuzzleService) GetTodaysPuzzle(c *fiber.Ctx) error {
	today := startOfDay(time.Now())

	var puzzle models.DailyPuzzle
	if err := s.DB.Where("puzzle_date = ?", today).First(&puzzle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no puzzle scheduled for today"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch puzzle"})
	}
	return c.JSON(puzzle)
}

func (s *PuzzleService) GetAllPuzzles(c *fiber.Ctx) error {
	var puzzles []models.DailyPuzzle
	if err := s.DB.Order("created_at DESC").Find(&puzzles).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch puzzles"})
	}
	return c.JSON(puzzles)
}

type puzzleInput struct {
	PuzzleDate  *time.Time `json:"puzzle_date"`
	FENPosition string     `json:"fen_position"`
	Solution    string     `json:"solution"`
	MovesCount  int        `json:"moves_count"`
	Hint        string     `json:"hint"`
	Difficulty  string     `json:"difficulty"`
}

func (s *PuzzleService) CreatePuzzle(c *fiber.Ctx) error {
	var input puzzleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.FENPosition == "" || input.Solution == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "fen_position and solution are required"})
	}

	puzzle := &models.DailyPuzzle{
		ID:          uuid.NewString(),
		PuzzleDate:  input.PuzzleDate,
		FENPosition: input.FENPosition,
		Solution:    input.Solution,
		MovesCount:  input.MovesCount,
		Hint:        input.Hint,
		Difficulty:  input.Difficulty,
	}
	if puzzle.MovesCount <= 0 {
		puzzle.MovesCount = 1
	}
	if puzzle.Difficulty == "" {
		puzzle.Difficulty = models.PuzzleMedium
	}

	if err := s.DB.Create(puzzle).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "a puzzle is already scheduled for that date"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create puzzle"})
	}
	return c.Status(fiber.StatusCreated).JSON(puzzle)
}

func (s *PuzzleService) UpdatePuzzle(c *fiber.Ctx) error {
	var puzzle models.DailyPuzzle
	if err := s.DB.First(&puzzle, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "puzzle not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch puzzle"})
	}

	var input puzzleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.FENPosition != "" {
		puzzle.FENPosition = input.FENPosition
	}
	if input.Solution != "" {
		puzzle.Solution = input.Solution
	}
	if input.MovesCount > 0 {
		puzzle.MovesCount = input.MovesCount
	}
	if input.Hint != "" {
		puzzle.Hint = input.Hint
	}
	if input.Difficulty != "" {
		puzzle.Difficulty = input.Difficulty
	}
	if input.PuzzleDate != nil {
		puzzle.PuzzleDate = input.PuzzleDate
	}

	if err := s.DB.Save(&puzzle).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "a puzzle is already scheduled for that date"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update puzzle"})
	}
	return c.JSON(puzzle)
}

func (s *PuzzleService) DeletePuzzle(c *fiber.Ctx) error {
	var puzzle models.DailyPuzzle
	if err := s.DB.First(&puzzle, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "puzzle not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch puzzle"})
	}
	if err := s.DB.Delete(&puzzle).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete puzzle"})
	}
	return c.JSON(fiber.Map{"message": "puzzle deleted"})
}

// StartPuzzleScheduler ensures every day has a puzzle: each hour it checks
// whether today is covered and, if not, promotes the oldest unscheduled
// puzzle in the pool.
func (s *PuzzleService) StartPuzzleScheduler() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			s.scheduleTodaysPuzzle()
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	sched.Start()
	return nil
}

func (s *PuzzleService) scheduleTodaysPuzzle() {
	today := startOfDay(time.Now())

	var n int64
	if err := s.DB.Model(&models.DailyPuzzle{}).Where("puzzle_date = ?", today).Count(&n).Error; err != nil {
		s.log.Error("puzzle scheduler DB error", zap.Error(err))
		return
	}
	if n > 0 {
		return
	}

	var next models.DailyPuzzle
	if err := s.DB.Where("puzzle_date IS NULL").Order("created_at ASC").First(&next).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error("puzzle scheduler DB error", zap.Error(err))
		} else {
			s.log.Warn("no unscheduled puzzles left in the pool")
		}
		return
	}

	if err := s.DB.Model(&next).Update("puzzle_date", today).Error; err != nil {
		s.log.Error("failed to schedule puzzle", zap.String("puzzle_id", next.ID), zap.Error(err))
		return
	}
	s.log.Info("scheduled today's puzzle", zap.String("puzzle_id", next.ID))
}
