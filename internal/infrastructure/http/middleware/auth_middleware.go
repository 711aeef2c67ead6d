package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	pkgjwt "github.com/g37/meeting-manager/pkg/jwt"
)

// Context keys set by EchoAuth for downstream handlers.
const (
	ContextUserID         = "user_id"
	ContextUserEmail      = "user_email"
	ContextOrganizationID = "organization_id"
)

// EchoAuth verifies the bearer token and stores the caller identity on the
// echo context. This is the whole interface to the external auth system: the
// workflow only needs to know who is approving.
func EchoAuth(manager *pkgjwt.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error":   "unauthorized",
					"message": "missing bearer token",
				})
			}

			claims, err := manager.Verify(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error":   "unauthorized",
					"message": err.Error(),
				})
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextUserEmail, claims.Email)
			c.Set(ContextOrganizationID, claims.OrganizationID)

			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	cookie, err := c.Cookie("access_token")
	if err == nil {
		return cookie.Value
	}
	return ""
}
