package handler

import "github.com/gofiber/fiber/v2"

// HandleEmployeeStatistics reports headcount by status and department.
func (h *Handler) HandleEmployeeStatistics(c *fiber.Ctx) error {
	stats, err := h.employees.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
