package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/civic-service-desk/internal/utils"
)

// Authenticate returns an Echo middleware that validates a Bearer
// session token and injects the resolved identity into the request
// context. The provided secret must match the one used when issuing
// tokens. Handlers behind this middleware read the identity via
// IdentityFrom.
//
// The role inside the identity is the claim embedded at issuance: a
// promotion to admin only takes effect on the user's next login, since
// sessions are stateless and carry no revocation.
func Authenticate(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "message": "Authentication required",
				})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			ident, err := utils.ParseSession(secret, raw)
			if err != nil {
				// An expired session gets its own message so clients
				// know to log in again rather than report a bug.
				msg := "Invalid token"
				if errors.Is(err, utils.ErrExpiredToken) {
					msg = "Token expired"
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "message": msg,
				})
			}

			c.Set(identityKey, ident)
			return next(c)
		}
	}
}
