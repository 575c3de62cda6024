package middleware

// identity.go defines how the authenticated identity travels through
// the Echo context. Authenticate stores it; handlers and RequireRole
// read it back via IdentityFrom.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/civic-service-desk/internal/model"
)

// identityKey is the context key under which Authenticate stores the
// resolved model.Identity.
const identityKey = "identity"

// IdentityFrom extracts the authenticated identity from the context.
// The second return value is false when no Authenticate middleware ran
// on the route or the stored value has the wrong type.
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	ident, ok := c.Get(identityKey).(model.Identity)
	return ident, ok
}
