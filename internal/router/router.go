package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/civic-service-desk/internal/handler"    // handlers that implement business logic
	"github.com/iliyamo/civic-service-desk/internal/middleware" // middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler. This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware. Credential-presenting operations
// (register, login, forgot/reset password) live under /auth without a
// session; verify and change-password require a valid bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Forgot-password always answers 200 so the route cannot be used to
	// probe which addresses are registered.
	g.POST("/forgot-password", a.ForgotPassword)
	// The reset token arrives as a path parameter; it is opaque and
	// single-use.
	g.POST("/reset-password/:token", a.ResetPassword)

	// Session-holding operations on the same /auth prefix.
	auth := e.Group("/auth", middleware.Authenticate(jwtSecret))
	auth.GET("/verify", a.Verify)
	auth.POST("/change-password", a.ChangePassword)
}
