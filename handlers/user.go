// handlers/user.go
package handlers

import (
	"club-management-system/middleware"
	"club-management-system/services"

	"github.com/gofiber/fiber/v2"
)

// Middleware is attached per route: mounting it on a "/" group would leak
// onto every route registered after this function runs.
func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	auth := middleware.UserContextMiddleware()
	manager := middleware.RequireManager()

	// Public directory views
	app.Get("/users/leaderboard", userService.GetLeaderboard)
	app.Get("/users/:id", userService.GetUserByID)
	app.Get("/users", userService.GetAllUsers)

	app.Get("/me", auth, userService.GetMe)

	app.Post("/users", auth, manager, userService.CreateUser)
	app.Put("/users/:id", auth, manager, userService.UpdateUser)
	app.Delete("/users/:id", auth, manager, userService.DeleteUser)
}
