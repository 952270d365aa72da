package httpapi

import (
	"strings"

	"github.com/dmitrijs2005/skyauth/internal/common"
	"github.com/dmitrijs2005/skyauth/internal/logging"
	"github.com/dmitrijs2005/skyauth/internal/server/access"
	"github.com/dmitrijs2005/skyauth/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

const claimsKey = "auth.claims"

// Authenticator verifies a raw token.
type Authenticator interface {
	Authenticate(token string) (models.Claims, error)
}

// ResourceResolver loads the ownership metadata of the resource a request
// targets.
type ResourceResolver func(c *fiber.Ctx) (access.Resource, error)

// TokenFromRequest returns the token from the X-Auth-Token header, falling
// back to "Authorization: Bearer <token>". Missing yields "".
func TokenFromRequest(c *fiber.Ctx) string {
	if t := c.Get(common.AuthTokenHeaderName); t != "" {
		return t
	}
	const prefix = "Bearer "
	if h := c.Get(fiber.HeaderAuthorization); len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

// ClaimsFrom returns the claims stored by RequireAuth.
func ClaimsFrom(c *fiber.Ctx) (models.Claims, bool) {
	claims, ok := c.Locals(claimsKey).(models.Claims)
	return claims, ok
}

// RequireAuth rejects requests without a valid token and stores the verified
// claims for later handlers.
func RequireAuth(a Authenticator, l logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := a.Authenticate(TokenFromRequest(c))
		if err != nil {
			return writeError(c, l, err)
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// RequireAccess permits the owner of the resolved resource or a holder of one
// of its allowed roles. It must run after RequireAuth.
func RequireAccess(resolve ResourceResolver, l logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return writeError(c, l, common.ErrNoToken)
		}
		r, err := resolve(c)
		if err != nil {
			return writeError(c, l, err)
		}
		if err := access.CanAccessResource(claims, r).Err(); err != nil {
			return writeError(c, l, err)
		}
		return c.Next()
	}
}

// RequireOwnerRole permits only the owner role. It must run after
// RequireAuth.
func RequireOwnerRole(l logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return writeError(c, l, common.ErrNoToken)
		}
		if err := access.RequireOwnerRole(claims).Err(); err != nil {
			return writeError(c, l, err)
		}
		return c.Next()
	}
}
