package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/civic-service-desk/internal/lifecycle"
	"github.com/iliyamo/civic-service-desk/internal/middleware"
	"github.com/iliyamo/civic-service-desk/internal/model"
)

// dbTimeout bounds every store call made from a handler so a stalled
// database surfaces as an error instead of a hung request.
const dbTimeout = 5 * time.Second

// identityFrom pulls the authenticated identity that the Authenticate
// middleware stored on the context.
func identityFrom(c echo.Context) (model.Identity, bool) {
	return middleware.IdentityFrom(c)
}

// fail writes the canonical error envelope. Every failure leaving this
// API has the same shape: {success:false, message}.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}

// lifecycleError translates engine errors into HTTP responses. The
// mapping keeps Unauthorized (no identity) and Forbidden (insufficient
// privilege) distinguishable, and reports store failures as retryable.
func lifecycleError(c echo.Context, err error) error {
	var ve *lifecycle.ValidationError
	switch {
	case errors.As(err, &ve):
		return fail(c, http.StatusBadRequest, ve.Message)
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return fail(c, http.StatusBadRequest, "Invalid status transition")
	case errors.Is(err, lifecycle.ErrUnauthorized):
		return fail(c, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, lifecycle.ErrForbidden):
		return fail(c, http.StatusForbidden, "Admin access required")
	case errors.Is(err, lifecycle.ErrNotFound):
		return fail(c, http.StatusNotFound, "Service request not found")
	case errors.Is(err, lifecycle.ErrConflict):
		return fail(c, http.StatusConflict, "Request was updated concurrently, please retry")
	case errors.Is(err, lifecycle.ErrStoreUnavailable):
		return fail(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
	}
	return fail(c, http.StatusInternalServerError, "Internal server error")
}
