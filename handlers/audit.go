// handlers/audit.go
package handlers

import (
	"club-management-system/middleware"
	"club-management-system/models"
	"club-management-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuditRoutes(app *fiber.App, auditService *services.AuditService) {
	auth := middleware.UserContextMiddleware()
	admin := middleware.RequireRoles(models.RoleAdmin)

	app.Get("/audit", auth, admin, auditService.GetAllAuditLogs)
	app.Get("/audit/user/:user_id", auth, admin, auditService.GetAuditLogsByUser)
	app.Get("/audit/action/:action_type", auth, admin, auditService.GetAuditLogsByAction)
}
