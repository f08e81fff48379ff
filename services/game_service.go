// services/game_service.go
package services

import (
	"errors"
	"time"

	"club-management-system/logging"
	"club-management-system/models"
	"club-management-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GameService struct {
	DB     *gorm.DB
	Rating *EloRatingService
	Audit  *AuditService
	log    *zap.Logger
}

func NewGameService(db *gorm.DB, rating *EloRatingService, audit *AuditService) *GameService {
	return &GameService{DB: db, Rating: rating, Audit: audit, log: logging.L().Named("games")}
}

type gameUploadInput struct {
	Event         string     `json:"event"`
	Site          string     `json:"site"`
	GameDate      *time.Time `json:"game_date"`
	Round         string     `json:"round"`
	WhitePlayer   string     `json:"white_player"`
	BlackPlayer   string     `json:"black_player"`
	WhitePlayerID *string    `json:"white_player_id"`
	BlackPlayerID *string    `json:"black_player_id"`
	Result        string     `json:"result"`
	ECO           string     `json:"eco"`
	PGNContent    string     `json:"pgn_content"`
	TournamentID  *string    `json:"tournament_id"`
}

func validResult(result string) bool {
	switch result {
	case models.ResultWhiteWins, models.ResultBlackWins, models.ResultDraw, models.ResultUnknown, "":
		return true
	}
	return false
}

// UploadGame creates an unapproved game record from a JSON body.
func (s *GameService) UploadGame(c *fiber.Ctx) error {
	uploaderID, _ := c.Locals("user_id").(string)
	if uploaderID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}

	var input gameUploadInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.PGNContent == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "pgn_content is required"})
	}
	if !validResult(input.Result) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid result (use: 1-0, 0-1, 1/2-1/2, *)"})
	}

	if input.TournamentID != nil {
		var tournament models.Tournament
		if err := s.DB.First(&tournament, "id = ?", *input.TournamentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "tournament not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch tournament"})
		}
	}
	for _, playerID := range []*string{input.WhitePlayerID, input.BlackPlayerID} {
		if playerID == nil {
			continue
		}
		var player models.User
		if err := s.DB.First(&player, "id = ?", *playerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "linked player not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch player"})
		}
	}

	game := &models.Game{
		ID:            uuid.NewString(),
		Event:         input.Event,
		Site:          input.Site,
		GameDate:      input.GameDate,
		Round:         input.Round,
		WhitePlayer:   input.WhitePlayer,
		BlackPlayer:   input.BlackPlayer,
		WhitePlayerID: input.WhitePlayerID,
		BlackPlayerID: input.BlackPlayerID,
		Result:        input.Result,
		ECO:           input.ECO,
		PGNContent:    input.PGNContent,
		UploadedByID:  uploaderID,
		TournamentID:  input.TournamentID,
		Approved:      false,
	}

	if err := s.DB.Create(game).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save game"})
	}
	return c.Status(fiber.StatusCreated).JSON(game)
}

// UploadGameFile accepts a multipart PGN file, stores it through the storage
// backend and creates the game record pointing at the stored object.
func (s *GameService) UploadGameFile(c *fiber.Ctx) error {
	uploaderID, _ := c.Locals("user_id").(string)
	if uploaderID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	if fileHeader.Size > 10*1024*1024 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file too large (max 10MB)"})
	}

	result := c.FormValue("result")
	if !validResult(result) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid result (use: 1-0, 0-1, 1/2-1/2, *)"})
	}

	var tournamentID *string
	if v := c.FormValue("tournament_id"); v != "" {
		var tournament models.Tournament
		if err := s.DB.First(&tournament, "id = ?", v).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "tournament not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch tournament"})
		}
		tournamentID = &v
	}

	key, err := utils.UploadGameFile(c.Context(), fileHeader)
	if err != nil {
		s.log.Error("game file upload failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store game file"})
	}

	game := &models.Game{
		ID:           uuid.NewString(),
		WhitePlayer:  c.FormValue("white_player"),
		BlackPlayer:  c.FormValue("black_player"),
		Result:       result,
		S3Key:        key,
		UploadedByID: uploaderID,
		TournamentID: tournamentID,
		Approved:     false,
	}
	if v := c.FormValue("white_player_id"); v != "" {
		id := v
		game.WhitePlayerID = &id
	}
	if v := c.FormValue("black_player_id"); v != "" {
		id := v
		game.BlackPlayerID = &id
	}

	if err := s.DB.Create(game).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save game"})
	}
	return c.Status(fiber.StatusCreated).JSON(game)
}

func (s *GameService) GetAllGames(c *fiber.Ctx) error {
	var games []models.Game
	if err := s.DB.Order("created_at DESC").Find(&games).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch games"})
	}
	return c.JSON(games)
}

func (s *GameService) GetApprovedGames(c *fiber.Ctx) error {
	var games []models.Game
	if err := s.DB.Where("approved = ?", true).Order("created_at DESC").Find(&games).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch games"})
	}
	return c.JSON(games)
}

func (s *GameService) GetPendingGames(c *fiber.Ctx) error {
	var games []models.Game
	if err := s.DB.Where("approved = ?", false).Order("created_at DESC").Find(&games).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch games"})
	}
	return c.JSON(games)
}

func (s *GameService) GetGameByID(c *fiber.Ctx) error {
	var game models.Game
	if err := s.DB.First(&game, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch game"})
	}
	return c.JSON(game)
}

func (s *GameService) GetGamesByTournament(c *fiber.Ctx) error {
	var games []models.Game
	if err := s.DB.Where("tournament_id = ?", c.Params("tournament_id")).Order("created_at DESC").Find(&games).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch games"})
	}
	return c.JSON(games)
}

func (s *GameService) GetMyGames(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	var games []models.Game
	if err := s.DB.Where("uploaded_by_id = ?", userID).Order("created_at DESC").Find(&games).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch games"})
	}
	return c.JSON(games)
}

// DownloadGameFile streams the stored PGN file for a game.
func (s *GameService) DownloadGameFile(c *fiber.Ctx) error {
	var game models.Game
	if err := s.DB.First(&game, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch game"})
	}
	if game.S3Key == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game has no stored file"})
	}

	data, err := utils.DownloadFile(c.Context(), game.S3Key)
	if err != nil {
		s.log.Error("game file download failed", zap.String("key", game.S3Key), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to download game file"})
	}
	c.Set("Content-Type", "application/x-chess-pgn")
	return c.Send(data)
}

// ApproveGame marks a game approved and, when both participants are linked
// club members, applies the rating update derived from the Result token.
// Re-approving is safe: the ledger's uniqueness guarantee stops any second
// rating application.
func (s *GameService) ApproveGame(c *fiber.Ctx) error {
	actorID, _ := c.Locals("user_id").(string)

	var game models.Game
	if err := s.DB.First(&game, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch game"})
	}

	// Reject outcomes that could never be rated before flipping any state.
	if game.WhitePlayerID != nil && game.BlackPlayerID != nil && *game.WhitePlayerID == *game.BlackPlayerID {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "white and black reference the same player"})
	}

	if !game.Approved {
		if err := s.DB.Model(&game).Update("approved", true).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to approve game"})
		}
		game.Approved = true
		if s.Audit != nil && actorID != "" {
			s.Audit.LogGameApproved(&actorID, game.ID, c.IP())
		}
	}

	ratingApplied, err := s.applyRatingForGame(c, &game)
	if err != nil {
		switch {
		case errors.Is(err, ErrSamePlayer):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ErrPlayerNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"game": game, "rating_applied": ratingApplied})
}

func (s *GameService) applyRatingForGame(c *fiber.Ctx, game *models.Game) (bool, error) {
	if game.Rated {
		return false, nil
	}
	if game.WhitePlayerID == nil || game.BlackPlayerID == nil {
		s.log.Info("game approved without linked players, skipping rating",
			zap.String("game_id", game.ID))
		return false, nil
	}

	ctx := c.Context()
	gameID := game.ID
	var err error
	switch game.Result {
	case models.ResultWhiteWins:
		_, _, err = s.Rating.ApplyDecisiveResult(ctx, *game.WhitePlayerID, *game.BlackPlayerID, &gameID)
	case models.ResultBlackWins:
		_, _, err = s.Rating.ApplyDecisiveResult(ctx, *game.BlackPlayerID, *game.WhitePlayerID, &gameID)
	case models.ResultDraw:
		_, _, err = s.Rating.ApplyDrawResult(ctx, *game.WhitePlayerID, *game.BlackPlayerID, &gameID)
	default:
		return false, nil
	}

	if err != nil && !errors.Is(err, ErrAlreadyRated) {
		return false, err
	}
	applied := err == nil

	if markErr := s.DB.Model(game).Update("rated", true).Error; markErr != nil {
		// The ledger already holds the truth; the flag is only a read path.
		s.log.Warn("failed to mark game as rated", zap.String("game_id", game.ID), zap.Error(markErr))
	} else {
		game.Rated = true
	}
	return applied, nil
}

// DeleteGame removes a game and its stored file. Ledger entries referencing
// the game are deliberately left untouched.
func (s *GameService) DeleteGame(c *fiber.Ctx) error {
	var game models.Game
	if err := s.DB.First(&game, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch game"})
	}

	if game.S3Key != "" {
		if err := utils.DeleteFile(c.Context(), game.S3Key); err != nil {
			s.log.Warn("failed to delete stored game file", zap.String("key", game.S3Key), zap.Error(err))
		}
	}

	if err := s.DB.Delete(&game).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete game"})
	}
	return c.JSON(fiber.Map{"message": "game deleted"})
}
