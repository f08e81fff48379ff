// handlers/tournament.go
package handlers

import (
	"club-management-system/middleware"
	"club-management-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTournamentRoutes(app *fiber.App, tournamentService *services.TournamentService) {
	auth := middleware.UserContextMiddleware()
	manager := middleware.RequireManager()

	app.Get("/tournaments", tournamentService.GetAllTournaments)
	app.Get("/tournaments/status/:status", tournamentService.GetTournamentsByStatus)
	app.Get("/tournaments/:id", tournamentService.GetTournamentByID)

	app.Post("/tournaments", auth, manager, tournamentService.CreateTournament)
	app.Put("/tournaments/:id", auth, manager, tournamentService.UpdateTournament)
	app.Patch("/tournaments/:id/status", auth, manager, tournamentService.UpdateTournamentStatus)
	app.Delete("/tournaments/:id", auth, manager, tournamentService.DeleteTournament)
}
