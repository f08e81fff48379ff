// handlers/post.go
package handlers

import (
	"club-management-system/middleware"
	"club-management-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPostRoutes(app *fiber.App, postService *services.PostService) {
	auth := middleware.UserContextMiddleware()
	manager := middleware.RequireManager()

	app.Get("/posts", postService.GetAllPosts)
	app.Get("/posts/:id", postService.GetPost)
	app.Get("/posts/:post_id/comments", postService.GetComments)

	app.Post("/posts", auth, postService.CreatePost)
	app.Put("/posts/:id", auth, postService.UpdatePost)
	app.Post("/posts/:post_id/comments", auth, postService.AddComment)
	app.Delete("/posts/:post_id/comments/:comment_id", auth, postService.DeleteComment)

	app.Delete("/posts/:id", auth, manager, postService.DeletePost)
	app.Patch("/posts/:id/pin", auth, manager, postService.TogglePin)
	app.Patch("/posts/:id/lock", auth, manager, postService.ToggleLock)
}
