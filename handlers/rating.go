// handlers/rating.go
package handlers

import (
	"club-management-system/middleware"
	"club-management-system/models"
	"club-management-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRatingRoutes(app *fiber.App, eloService *services.EloRatingService) {
	auth := middleware.UserContextMiddleware()
	admin := middleware.RequireRoles(models.RoleAdmin)

	app.Get("/ratings/player/:player_id", eloService.GetPlayerRatingHistory)
	app.Get("/ratings/game/:game_id", eloService.GetGameRatingChanges)

	app.Post("/ratings/adjust", auth, admin, eloService.AdjustPlayerRating)
}
