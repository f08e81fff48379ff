package services

import (
	"net/http/httptest"
	"testing"

	"club-management-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newApproveApp(t *testing.T) (*fiber.App, *GameService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	elo := NewEloRatingService(db, NewAuditService(db), nil)
	svc := NewGameService(db, elo, NewAuditService(db))

	app := fiber.New()
	app.Patch("/games/:id/approve", svc.ApproveGame)
	return app, svc, db
}

func seedGame(t *testing.T, db *gorm.DB, whiteID, blackID *string, result string) *models.Game {
	t.Helper()
	g := &models.Game{
		ID:            uuid.NewString(),
		WhitePlayer:   "White, Test",
		BlackPlayer:   "Black, Test",
		WhitePlayerID: whiteID,
		BlackPlayerID: blackID,
		Result:        result,
		UploadedByID:  uuid.NewString(),
	}
	if err := db.Create(g).Error; err != nil {
		t.Fatalf("seed game: %v", err)
	}
	return g
}

func TestApproveGameAppliesRating(t *testing.T) {
	app, _, db := newApproveApp(t)
	white := seedPlayer(t, db, InitialRating, 0)
	black := seedPlayer(t, db, InitialRating, 0)
	game := seedGame(t, db, &white.ID, &black.ID, models.ResultWhiteWins)

	req := httptest.NewRequest("PATCH", "/games/"+game.ID+"/approve", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if got := reload(t, db, white.ID); got.Rating != 1212 {
		t.Errorf("white rating = %d, want 1212", got.Rating)
	}
	if got := reload(t, db, black.ID); got.Rating != 1188 {
		t.Errorf("black rating = %d, want 1188", got.Rating)
	}

	var g models.Game
	if err := db.First(&g, "id = ?", game.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !g.Approved || !g.Rated {
		t.Errorf("game flags approved=%v rated=%v, want both true", g.Approved, g.Rated)
	}
}

func TestApproveGameBlackWins(t *testing.T) {
	app, _, db := newApproveApp(t)
	white := seedPlayer(t, db, InitialRating, 0)
	black := seedPlayer(t, db, InitialRating, 0)
	game := seedGame(t, db, &white.ID, &black.ID, models.ResultBlackWins)

	resp, err := app.Test(httptest.NewRequest("PATCH", "/games/"+game.ID+"/approve", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if got := reload(t, db, black.ID); got.Rating != 1212 {
		t.Errorf("black rating = %d, want 1212", got.Rating)
	}
	if got := reload(t, db, white.ID); got.Rating != 1188 {
		t.Errorf("white rating = %d, want 1188", got.Rating)
	}
}

func TestReapproveGameDoesNotDoubleApply(t *testing.T) {
	app, _, db := newApproveApp(t)
	white := seedPlayer(t, db, InitialRating, 0)
	black := seedPlayer(t, db, InitialRating, 0)
	game := seedGame(t, db, &white.ID, &black.ID, models.ResultWhiteWins)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("PATCH", "/games/"+game.ID+"/approve", nil), -1)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, resp.StatusCode)
		}
	}

	if got := reload(t, db, white.ID); got.Rating != 1212 || got.GamesPlayed != 1 {
		t.Errorf("white = %d rating, %d games; approval applied twice?", got.Rating, got.GamesPlayed)
	}
	var n int64
	if err := db.Model(&models.RatingHistory{}).Where("game_id = ?", game.ID).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("ledger has %d entries for game, want 2", n)
	}
}

func TestApproveGameWithoutLinkedPlayers(t *testing.T) {
	app, _, db := newApproveApp(t)
	game := seedGame(t, db, nil, nil, models.ResultWhiteWins)

	resp, err := app.Test(httptest.NewRequest("PATCH", "/games/"+game.ID+"/approve", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var g models.Game
	if err := db.First(&g, "id = ?", game.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !g.Approved {
		t.Error("game not approved")
	}
	var n int64
	if err := db.Model(&models.RatingHistory{}).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("unlinked game produced %d ledger entries, want 0", n)
	}
}

func TestApproveGameSamePlayerBothSides(t *testing.T) {
	app, _, db := newApproveApp(t)
	p := seedPlayer(t, db, InitialRating, 0)
	game := seedGame(t, db, &p.ID, &p.ID, models.ResultWhiteWins)

	resp, err := app.Test(httptest.NewRequest("PATCH", "/games/"+game.ID+"/approve", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}

	var g models.Game
	if err := db.First(&g, "id = ?", game.ID).Error; err != nil {
		t.Fatal(err)
	}
	if g.Approved {
		t.Error("self-play game must not be approved")
	}
}

func TestApproveGameNotFound(t *testing.T) {
	app, _, _ := newApproveApp(t)
	resp, err := app.Test(httptest.NewRequest("PATCH", "/games/"+uuid.NewString()+"/approve", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
