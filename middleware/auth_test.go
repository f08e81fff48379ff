package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newGatedApp() *fiber.App {
	app := fiber.New()
	auth := UserContextMiddleware()
	app.Get("/me", auth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("user_id")})
	})
	app.Get("/admin", auth, RequireManager(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	// Public route registered after the gated ones; must stay reachable
	// without headers.
	app.Get("/open", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestMiddlewareScopedToItsRoutes(t *testing.T) {
	app := newGatedApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/open", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("GET /open without headers = %d, want 200", resp.StatusCode)
	}
}

func TestUserContextRequiresHeader(t *testing.T) {
	app := newGatedApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("X-User-ID", "u1")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRequireManagerRoles(t *testing.T) {
	app := newGatedApp()

	tests := []struct {
		roles string
		want  int
	}{
		{"", fiber.StatusForbidden},
		{"MEMBER", fiber.StatusForbidden},
		{"MANAGER", fiber.StatusOK},
		{"ADMIN", fiber.StatusOK},
		{"MEMBER, MANAGER", fiber.StatusOK},
	}
	for _, tc := range tests {
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("X-User-ID", "u1")
		if tc.roles != "" {
			req.Header.Set("X-User-Roles", tc.roles)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("roles %q: %v", tc.roles, err)
		}
		if resp.StatusCode != tc.want {
			t.Errorf("roles %q: status = %d, want %d", tc.roles, resp.StatusCode, tc.want)
		}
	}
}
