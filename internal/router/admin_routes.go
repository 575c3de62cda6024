package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/civic-service-desk/internal/handler"
	"github.com/iliyamo/civic-service-desk/internal/middleware"
	"github.com/iliyamo/civic-service-desk/internal/model"
)

// RegisterAdmin registers the triage endpoints under /admin. All
// routes require a valid session token carrying the admin role: a
// missing or invalid token yields 401, a citizen token yields 403.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/admin",
		middleware.Authenticate(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.GET("/requests", h.ListRequests)
	g.GET("/requests/:id", h.GetRequest)
	g.PUT("/requests/:id/status", h.UpdateStatus)
	g.GET("/stats", h.Stats)
}
