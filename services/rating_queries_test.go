package services

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"club-management-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newRatingApp(t *testing.T) (*fiber.App, *EloRatingService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewEloRatingService(db, NewAuditService(db), nil)

	app := fiber.New()
	app.Get("/ratings/player/:player_id", svc.GetPlayerRatingHistory)
	app.Get("/ratings/game/:game_id", svc.GetGameRatingChanges)
	return app, svc, db
}

func TestGetPlayerRatingHistoryUnknownPlayer(t *testing.T) {
	app, _, _ := newRatingApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/ratings/player/"+uuid.NewString(), nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetPlayerRatingHistoryEmpty(t *testing.T) {
	app, _, db := newRatingApp(t)
	p := seedPlayer(t, db, InitialRating, 0)

	resp, err := app.Test(httptest.NewRequest("GET", "/ratings/player/"+p.ID, nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 for a member with no games yet", resp.StatusCode)
	}
	var history []models.RatingHistory
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("got %d entries, want empty history", len(history))
	}
}

func TestGetGameRatingChanges(t *testing.T) {
	app, svc, db := newRatingApp(t)
	a := seedPlayer(t, db, InitialRating, 0)
	b := seedPlayer(t, db, InitialRating, 0)
	gameID := uuid.NewString()

	if _, _, err := svc.ApplyDecisiveResult(context.Background(), a.ID, b.ID, &gameID); err != nil {
		t.Fatalf("apply outcome: %v", err)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/ratings/game/"+gameID, nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var history []models.RatingHistory
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d entries, want one per participant", len(history))
	}
	for _, h := range history {
		if h.GameID == nil || *h.GameID != gameID {
			t.Errorf("entry %s carries game id %v, want %s", h.ID, h.GameID, gameID)
		}
	}
}
