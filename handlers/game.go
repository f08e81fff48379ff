// handlers/game.go
package handlers

import (
	"club-management-system/middleware"
	"club-management-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGameRoutes(app *fiber.App, gameService *services.GameService) {
	auth := middleware.UserContextMiddleware()
	manager := middleware.RequireManager()

	app.Get("/games/approved", gameService.GetApprovedGames)
	app.Get("/games/:id/file", gameService.DownloadGameFile)
	app.Get("/tournaments/:tournament_id/games", gameService.GetGamesByTournament)

	app.Get("/games", auth, gameService.GetAllGames)
	app.Get("/my-games", auth, gameService.GetMyGames)
	app.Post("/games", auth, gameService.UploadGame)
	app.Post("/games/upload-file", auth, gameService.UploadGameFile)

	app.Get("/games-pending", auth, manager, gameService.GetPendingGames)
	app.Patch("/games/:id/approve", auth, manager, gameService.ApproveGame)
	app.Delete("/games/:id", auth, manager, gameService.DeleteGame)

	// Registered last so the static paths above win the match.
	app.Get("/games/:id", gameService.GetGameByID)
}
