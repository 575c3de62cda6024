package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/civic-service-desk/internal/model"
)

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles. It assumes
// Authenticate already ran and stored the identity in the context; a
// request that reaches this middleware without one is rejected with
// 401, and a valid identity with an insufficient role gets a 403. The
// two cases are deliberately distinguishable.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := IdentityFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "message": "Authentication required",
				})
			}
			if !allowed[ident.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{
					"success": false, "message": "Admin access required",
				})
			}
			return next(c)
		}
	}
}
