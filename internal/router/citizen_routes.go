package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/civic-service-desk/internal/handler"
	"github.com/iliyamo/civic-service-desk/internal/middleware"
)

// RegisterCitizen registers the endpoints a citizen uses for their own
// service requests. All routes require a valid session token; no role
// restriction applies because admins keep their citizen abilities.
func RegisterCitizen(e *echo.Echo, h *handler.CitizenHandler, jwtSecret string) {
	g := e.Group("/citizen", middleware.Authenticate(jwtSecret))

	// Multipart form with an optional single "image" field (≤5MB,
	// image content only).
	g.POST("/requests", h.CreateRequest)
	g.GET("/requests", h.ListRequests)
	g.GET("/stats", h.Stats)
}
