package handler

import (
	"employee-management-system/internal/middleware"
	"employee-management-system/internal/model"

	"github.com/gofiber/fiber/v2"
)

const (
	msgResetRequested = "If an account with that email exists, a password reset link has been sent."
	msgPasswordReset  = "Password has been reset successfully."
)

func (h *Handler) HandleRegister(c *fiber.Ctx) error {
	var input model.RegisterInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	resp, err := h.users.Register(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *Handler) HandleLogin(c *fiber.Ctx) error {
	var input model.LoginInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	resp, err := h.users.Login(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *Handler) HandleForgotPassword(c *fiber.Ctx) error {
	var input model.ForgotPasswordInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	if err := h.users.RequestPasswordReset(c.UserContext(), input.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": msgResetRequested})
}

func (h *Handler) HandleResetPassword(c *fiber.Ctx) error {
	var input model.ResetPasswordInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	if err := h.users.ResetPassword(c.UserContext(), c.Params("token"), input); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": msgPasswordReset})
}

// HandleMe returns the caller's account.
func (h *Handler) HandleMe(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), middleware.CurrentSession(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}
