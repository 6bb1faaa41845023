// Package handler exposes the account and employee services over HTTP.
package handler

import (
	"context"

	"employee-management-system/internal/logging"
	"employee-management-system/internal/service"
)

type Handler struct {
	users     *service.UserService
	employees *service.EmployeeService
	audit     *service.AuditLog
	log       logging.Logger

	healthCheck func(ctx context.Context) error
}

func New(users *service.UserService, employees *service.EmployeeService, audit *service.AuditLog, log logging.Logger) *Handler {
	return &Handler{users: users, employees: employees, audit: audit, log: log}
}

// WithHealthCheck makes /health report 503 while check fails.
func (h *Handler) WithHealthCheck(check func(ctx context.Context) error) *Handler {
	h.healthCheck = check
	return h
}
