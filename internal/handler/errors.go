package handler

import (
	"errors"

	"employee-management-system/internal/common"
	"employee-management-system/internal/logging"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   common.Kind `json:"error"`
	Message string      `json:"message"`
}

// ErrorHandler converts errors returned by handlers and middleware into
// ErrorResponse bodies. Unclassified errors are logged and reported as a
// generic server error.
func ErrorHandler(log logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		// classified errors win over any fiber error they wrap
		var appErr *common.Error
		if !errors.As(err, &appErr) {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(ErrorResponse{Error: kindForStatus(fe.Code), Message: fe.Message})
			}
			appErr = common.Wrap(common.KindDependency, common.ErrInternal.Message, err)
		}
		if appErr.Kind == common.KindDependency {
			log.Error(c.UserContext(), "request failed",
				"method", c.Method(), "path", c.Path(), "error", err)
		}

		return c.Status(appErr.Kind.Status()).JSON(ErrorResponse{Error: appErr.Kind, Message: appErr.Message})
	}
}

func kindForStatus(code int) common.Kind {
	switch code {
	case fiber.StatusUnauthorized:
		return common.KindAuthentication
	case fiber.StatusForbidden:
		return common.KindAuthorization
	case fiber.StatusNotFound:
		return common.KindNotFound
	}
	if code >= 400 && code < 500 {
		return common.KindValidation
	}
	return common.KindDependency
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return common.Wrap(common.KindValidation, "Invalid request body", err)
	}
	return nil
}
