package handler

import (
	"strconv"

	"employee-management-system/internal/model"

	"github.com/gofiber/fiber/v2"
)

const maxLogPageSize = 100

// HandleGetLogs lists operation logs, optionally only those of user_id.
func (h *Handler) HandleGetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > maxLogPageSize {
		pageSize = maxLogPageSize
	}

	var (
		logs  []model.OperationLog
		total int64
		err   error
	)
	if userID := c.Query("user_id"); userID != "" {
		logs, total, err = h.audit.ListByUser(c.UserContext(), userID, page, pageSize)
	} else {
		logs, total, err = h.audit.List(c.UserContext(), page, pageSize)
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"total": total,
		"page":  page,
		"size":  pageSize,
	})
}
