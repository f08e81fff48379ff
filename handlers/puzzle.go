// handlers/puzzle.go
package handlers

import (
	"club-management-system/middleware"
	"club-management-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPuzzleRoutes(app *fiber.App, puzzleService *services.PuzzleService) {
	auth := middleware.UserContextMiddleware()
	manager := middleware.RequireManager()

	app.Get("/puzzles/daily", puzzleService.GetTodaysPuzzle)

	app.Get("/puzzles", auth, manager, puzzleService.GetAllPuzzles)
	app.Post("/puzzles", auth, manager, puzzleService.CreatePuzzle)
	app.Put("/puzzles/:id", auth, manager, puzzleService.UpdatePuzzle)
	app.Delete("/puzzles/:id", auth, manager, puzzleService.DeletePuzzle)
}
