package middleware

import (
	"context"

	"quizhive/internal/domain"
	"quizhive/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// identityLocalsKey is where the resolved caller identity lives for
// the rest of the request chain.
const identityLocalsKey = "identity"

// SessionResolver resolves an opaque session id to its stored payload.
// Satisfied by service.AuthService.
type SessionResolver interface {
	GetSession(ctx context.Context, sessionID string) (*dto.SessionData, error)
}

// SessionAuth resolves the session cookie into a domain.Identity and
// rejects requests without a valid session. Handlers downstream read
// the identity with IdentityFromContext and pass it to services
// explicitly.
func SessionAuth(sessions SessionResolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(cookieName)
		if sessionID == "" {
			return domain.NewUnauthorizedError("not logged in")
		}

		data, err := sessions.GetSession(c.UserContext(), sessionID)
		if err != nil {
			return err
		}

		c.Locals(identityLocalsKey, domain.Identity{
			UserID:   data.UserID,
			Username: data.Username,
			Role:     domain.Role(data.Role),
		})
		return c.Next()
	}
}

// RequireRoles allows only the listed roles through. Requiring
// RoleTeacher or RoleStaff admits any staff-grade role, including
// admin; the two are equivalent everywhere.
func RequireRoles(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return domain.NewUnauthorizedError("not logged in")
		}
		for _, role := range roles {
			if identity.Role == role {
				return c.Next()
			}
			if (role == domain.RoleTeacher || role == domain.RoleStaff) && identity.Role.IsStaff() {
				return c.Next()
			}
		}
		return domain.NewForbiddenError("insufficient role")
	}
}

// IdentityFromContext returns the identity stored by SessionAuth.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityLocalsKey).(domain.Identity)
	return identity, ok
}
