package middleware

import (
	"context"
	"strings"

	"employee-management-system/internal/common"
	"employee-management-system/internal/model"

	"github.com/gofiber/fiber/v2"
)

const sessionLocal = "session"

type sessionKey struct{}

// SessionResolver turns a bearer token into the session of a live user.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*model.Session, error)
}

// Auth requires a valid "Authorization: Bearer <token>" header and attaches
// the caller's Session to the request.
func Auth(resolver SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return common.ErrMissingToken
		}

		tokenParts := strings.Fields(authHeader)
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
			return common.ErrMissingToken
		}

		session, err := resolver.ResolveSession(c.UserContext(), tokenParts[1])
		if err != nil {
			return err
		}

		c.Locals(sessionLocal, session)
		c.SetUserContext(WithSession(c.UserContext(), session))
		return c.Next()
	}
}

// Require lets the request through only when the session grants perm.
// It must run after Auth.
func Require(perm model.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := CurrentSession(c)
		if session == nil {
			return common.ErrMissingToken
		}
		if !session.Can(perm) {
			return common.ErrForbidden
		}
		return c.Next()
	}
}

// CurrentSession returns the Session attached by Auth, or nil.
func CurrentSession(c *fiber.Ctx) *model.Session {
	session, _ := c.Locals(sessionLocal).(*model.Session)
	return session
}

func WithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func SessionFromContext(ctx context.Context) *model.Session {
	session, _ := ctx.Value(sessionKey{}).(*model.Session)
	return session
}
