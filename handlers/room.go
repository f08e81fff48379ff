// handlers/room.go
package handlers

import (
	"club-management-system/middleware"
	"club-management-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRoomRoutes(app *fiber.App, roomService *services.RoomService) {
	auth := middleware.UserContextMiddleware()
	manager := middleware.RequireManager()

	app.Get("/rooms", roomService.GetAllRooms)
	app.Get("/rooms/active", roomService.GetActiveRooms)
	app.Get("/rooms/:id", roomService.GetRoomByID)

	app.Post("/rooms", auth, manager, roomService.CreateRoom)
	app.Put("/rooms/:id", auth, manager, roomService.UpdateRoom)
	app.Patch("/rooms/:id/deactivate", auth, manager, roomService.DeactivateRoom)
	app.Delete("/rooms/:id", auth, manager, roomService.DeleteRoom)
}
