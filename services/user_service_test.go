package services

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"club-management-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func newUserApp(t *testing.T, leaderboard *LeaderboardCache) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewUserService(db, NewAuditService(db), leaderboard)

	app := fiber.New()
	app.Post("/users", svc.CreateUser)
	app.Get("/users/leaderboard", svc.GetLeaderboard)
	return app, db
}

func TestCreateUserDefaults(t *testing.T) {
	app, db := newUserApp(t, nil)

	body, _ := json.Marshal(fiber.Map{
		"username":  "magnus",
		"email":     "magnus@club.test",
		"password":  "secret123",
		"full_name": "Magnus C.",
	})
	req := httptest.NewRequest("POST", "/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var u models.User
	if err := db.First(&u, "username = ?", "magnus").Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u.Rating != InitialRating || u.GamesPlayed != 0 {
		t.Errorf("new member starts at %d/%d games, want %d/0", u.Rating, u.GamesPlayed, InitialRating)
	}
	if u.Roles != models.RoleMember {
		t.Errorf("roles = %q, want MEMBER", u.Roles)
	}
	if u.PasswordHash == "secret123" || u.PasswordHash == "" {
		t.Error("password stored unhashed")
	}

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, leaked := decoded["password_hash"]; leaked {
		t.Error("response leaks password hash")
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	app, _ := newUserApp(t, nil)

	body, _ := json.Marshal(fiber.Map{
		"username": "magnus",
		"email":    "magnus@club.test",
		"password": "secret123",
	})
	for i, want := range []int{fiber.StatusCreated, fiber.StatusConflict} {
		req := httptest.NewRequest("POST", "/users", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != want {
			t.Fatalf("request %d status = %d, want %d", i, resp.StatusCode, want)
		}
	}
}

func TestCreateUserMissingFields(t *testing.T) {
	app, _ := newUserApp(t, nil)

	body, _ := json.Marshal(fiber.Map{"username": "magnus"})
	req := httptest.NewRequest("POST", "/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetLeaderboardDBFallback(t *testing.T) {
	app, db := newUserApp(t, nil)

	seedPlayer(t, db, 1500, 10)
	top := seedPlayer(t, db, 1900, 50)
	seedPlayer(t, db, 1300, 5)

	resp, err := app.Test(httptest.NewRequest("GET", "/users/leaderboard?limit=2", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var entries []userResponse
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != top.ID || entries[0].Rating != 1900 {
		t.Errorf("top entry = %+v, want the 1900-rated player", entries[0])
	}
}
