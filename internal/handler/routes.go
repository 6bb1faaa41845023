package handler

import (
	"time"

	"employee-management-system/internal/middleware"
	"employee-management-system/internal/model"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes mounts the API under /api and a liveness check at /health.
func (h *Handler) SetupRoutes(app *fiber.App) {
	app.Get("/health", h.HandleHealth)

	api := app.Group("/api")
	auth := middleware.Auth(h.users)

	users := api.Group("/users")
	users.Post("/register", h.HandleRegister)
	users.Post("/login", h.HandleLogin)
	users.Post("/forgot-password", h.HandleForgotPassword)
	users.Put("/reset-password/:token", h.HandleResetPassword)
	users.Get("/me", auth, h.HandleMe)

	read := middleware.Require(model.PermReadEmployees)
	manage := middleware.Require(model.PermManageEmployees)

	employees := api.Group("/employees", auth)
	employees.Get("/", read, h.HandleListEmployees)
	employees.Post("/", manage, h.HandleCreateEmployee)
	employees.Get("/stats", read, h.HandleEmployeeStatistics)

	// bulk routes first so /:id does not capture them
	employees.Delete("/bulk", manage, h.HandleBulkDeleteEmployees)
	employees.Put("/bulk/status", manage, h.HandleBulkUpdateStatus)

	employees.Get("/:id", read, h.HandleGetEmployee)
	employees.Put("/:id", manage, h.HandleUpdateEmployee)
	employees.Delete("/:id", manage, h.HandleDeleteEmployee)

	api.Get("/logs", auth, middleware.Require(model.PermReadLogs), h.HandleGetLogs)
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	if h.healthCheck != nil {
		if err := h.healthCheck(c.UserContext()); err != nil {
			h.log.Warn(c.UserContext(), "health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":    "unavailable",
				"timestamp": time.Now().UTC(),
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ok", "timestamp": time.Now().UTC()})
}
