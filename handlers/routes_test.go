package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"club-management-system/models"
	"club-management-system/services"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newRouteTestApp mounts the full route table in the same order main.go
// does, so middleware attached by one Setup call cannot silently leak onto
// routes registered by a later one.
func newRouteTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "club_routes.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.RatingHistory{},
		&models.Tournament{},
		&models.Room{},
		&models.Post{},
		&models.Comment{},
		&models.DailyPuzzle{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	auditService := services.NewAuditService(db)
	eloService := services.NewEloRatingService(db, auditService, nil)
	gameService := services.NewGameService(db, eloService, auditService)
	userService := services.NewUserService(db, auditService, nil)
	tournamentService := services.NewTournamentService(db, auditService)
	roomService := services.NewRoomService(db)
	postService := services.NewPostService(db)
	puzzleService := services.NewPuzzleService(db)

	app := fiber.New()
	SetupUserRoutes(app, userService)
	SetupGameRoutes(app, gameService)
	SetupRatingRoutes(app, eloService)
	SetupTournamentRoutes(app, tournamentService)
	SetupRoomRoutes(app, roomService)
	SetupPostRoutes(app, postService)
	SetupPuzzleRoutes(app, puzzleService)
	SetupAuditRoutes(app, auditService)
	return app, db
}

func seedRouteUser(t *testing.T, db *gorm.DB, roles string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.NewString(),
		Username:     "member_" + uuid.NewString()[:8],
		Email:        uuid.NewString()[:8] + "@club.test",
		PasswordHash: "x",
		Roles:        roles,
		Rating:       services.InitialRating,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, user *models.User) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("X-User-ID", user.ID)
		req.Header.Set("X-User-Roles", user.Roles)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp.StatusCode
}

// Public reads must work with no gateway headers at all, wherever they land
// in the registration order.
func TestPublicRoutesNeedNoHeaders(t *testing.T) {
	app, _ := newRouteTestApp(t)

	tests := []struct {
		path string
		want int
	}{
		{"/users", fiber.StatusOK},
		{"/users/leaderboard", fiber.StatusOK},
		{"/games/approved", fiber.StatusOK},
		{"/tournaments", fiber.StatusOK},
		{"/rooms", fiber.StatusOK},
		{"/rooms/active", fiber.StatusOK},
		{"/posts", fiber.StatusOK},
		// Not found is fine; unauthorized is not.
		{"/puzzles/daily", fiber.StatusNotFound},
		{"/ratings/player/" + uuid.NewString(), fiber.StatusNotFound},
		{"/ratings/game/" + uuid.NewString(), fiber.StatusOK},
	}
	for _, tc := range tests {
		if got := doJSON(t, app, "GET", tc.path, nil, nil); got != tc.want {
			t.Errorf("GET %s = %d, want %d", tc.path, got, tc.want)
		}
	}
}

func TestMemberRoutesAcceptPlainMembers(t *testing.T) {
	app, db := newRouteTestApp(t)
	member := seedRouteUser(t, db, models.RoleMember)

	if got := doJSON(t, app, "POST", "/posts", fiber.Map{"title": "Club night", "content": "Friday 19:00"}, member); got != fiber.StatusCreated {
		t.Errorf("member POST /posts = %d, want 201", got)
	}
	if got := doJSON(t, app, "POST", "/posts", fiber.Map{"title": "x", "content": "y"}, nil); got != fiber.StatusUnauthorized {
		t.Errorf("anonymous POST /posts = %d, want 401", got)
	}
	if got := doJSON(t, app, "GET", "/me", nil, member); got != fiber.StatusOK {
		t.Errorf("member GET /me = %d, want 200", got)
	}
	if got := doJSON(t, app, "POST", "/games", fiber.Map{"pgn_content": "1. e4 e5 *", "result": "*"}, member); got != fiber.StatusCreated {
		t.Errorf("member POST /games = %d, want 201", got)
	}
}

func TestManagerAndAdminGates(t *testing.T) {
	app, db := newRouteTestApp(t)
	member := seedRouteUser(t, db, models.RoleMember)
	manager := seedRouteUser(t, db, models.RoleManager)
	admin := seedRouteUser(t, db, models.RoleAdmin)

	white := seedRouteUser(t, db, models.RoleMember)
	black := seedRouteUser(t, db, models.RoleMember)
	game := &models.Game{
		ID:            uuid.NewString(),
		WhitePlayerID: &white.ID,
		BlackPlayerID: &black.ID,
		Result:        models.ResultWhiteWins,
		UploadedByID:  member.ID,
	}
	if err := db.Create(game).Error; err != nil {
		t.Fatalf("seed game: %v", err)
	}

	if got := doJSON(t, app, "PATCH", "/games/"+game.ID+"/approve", nil, member); got != fiber.StatusForbidden {
		t.Errorf("member approve = %d, want 403", got)
	}
	if got := doJSON(t, app, "PATCH", "/games/"+game.ID+"/approve", nil, manager); got != fiber.StatusOK {
		t.Errorf("manager approve = %d, want 200", got)
	}
	var w models.User
	if err := db.First(&w, "id = ?", white.ID).Error; err != nil {
		t.Fatal(err)
	}
	if w.Rating != 1212 {
		t.Errorf("winner rating after approval = %d, want 1212", w.Rating)
	}

	if got := doJSON(t, app, "GET", "/audit", nil, member); got != fiber.StatusForbidden {
		t.Errorf("member GET /audit = %d, want 403", got)
	}
	if got := doJSON(t, app, "GET", "/audit", nil, manager); got != fiber.StatusForbidden {
		t.Errorf("manager GET /audit = %d, want 403 (admin only)", got)
	}
	if got := doJSON(t, app, "GET", "/audit", nil, admin); got != fiber.StatusOK {
		t.Errorf("admin GET /audit = %d, want 200", got)
	}

	newUser := fiber.Map{"username": "fresh", "email": "fresh@club.test", "password": "secret123"}
	if got := doJSON(t, app, "POST", "/users", newUser, member); got != fiber.StatusForbidden {
		t.Errorf("member POST /users = %d, want 403", got)
	}
	if got := doJSON(t, app, "POST", "/users", newUser, admin); got != fiber.StatusCreated {
		t.Errorf("admin POST /users = %d, want 201", got)
	}

	adjust := fiber.Map{"player_id": member.ID, "new_rating": 1300, "reason": "import"}
	if got := doJSON(t, app, "POST", "/ratings/adjust", adjust, manager); got != fiber.StatusForbidden {
		t.Errorf("manager POST /ratings/adjust = %d, want 403 (admin only)", got)
	}
	if got := doJSON(t, app, "POST", "/ratings/adjust", adjust, admin); got != fiber.StatusCreated {
		t.Errorf("admin POST /ratings/adjust = %d, want 201", got)
	}
}
