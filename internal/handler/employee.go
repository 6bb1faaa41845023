package handler

import (
	"fmt"

	"employee-management-system/internal/common"
	"employee-management-system/internal/middleware"
	"employee-management-system/internal/model"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) HandleListEmployees(c *fiber.Ctx) error {
	var query model.EmployeeQuery
	if err := c.QueryParser(&query); err != nil {
		return common.Wrap(common.KindValidation, "Invalid query parameters", err)
	}

	page, err := h.employees.List(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handler) HandleGetEmployee(c *fiber.Ctx) error {
	e, err := h.employees.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(e)
}

func (h *Handler) HandleCreateEmployee(c *fiber.Ctx) error {
	var input model.EmployeeInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	e, err := h.employees.Create(c.UserContext(), input, middleware.CurrentSession(c).UserID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(e)
}

func (h *Handler) HandleUpdateEmployee(c *fiber.Ctx) error {
	var patch model.EmployeePatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}

	e, err := h.employees.Update(c.UserContext(), c.Params("id"), patch, middleware.CurrentSession(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(e)
}

func (h *Handler) HandleDeleteEmployee(c *fiber.Ctx) error {
	if err := h.employees.Delete(c.UserContext(), c.Params("id"), middleware.CurrentSession(c).UserID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Employee removed"})
}

func (h *Handler) HandleBulkDeleteEmployees(c *fiber.Ctx) error {
	var input model.BulkDeleteInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	deleted, err := h.employees.BulkDelete(c.UserContext(), input, middleware.CurrentSession(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":      fmt.Sprintf("%d employees deleted successfully", deleted),
		"deletedCount": deleted,
	})
}

func (h *Handler) HandleBulkUpdateStatus(c *fiber.Ctx) error {
	var input model.BulkStatusInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	modified, err := h.employees.BulkUpdateStatus(c.UserContext(), input, middleware.CurrentSession(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":       fmt.Sprintf("%d employees updated successfully", modified),
		"modifiedCount": modified,
	})
}
