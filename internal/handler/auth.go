package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/civic-service-desk/internal/config"
	"github.com/iliyamo/civic-service-desk/internal/model"
	"github.com/iliyamo/civic-service-desk/internal/queue"
	"github.com/iliyamo/civic-service-desk/internal/repository"
	queue_publisher "github.com/iliyamo/civic-service-desk/internal/service"
	"github.com/iliyamo/civic-service-desk/internal/utils"
)

// UserStore is the credential-store surface the auth endpoints need.
// It is implemented by repository.UserRepo; tests supply fakes.
// Lookup methods return sql.ErrNoRows for unknown users.
type UserStore interface {
	Create(ctx context.Context, name, email, password string, cost int) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	SetResetToken(ctx context.Context, id uint64, token string, expiry time.Time) error
	ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (model.User, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewAuthHandler(cfg config.Config, users UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Password string `json:"password"`
}
type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type userPart struct {
	ID    uint64     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func userPartOf(u model.User) userPart {
	return userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Register creates a citizen account and returns a session token
// immediately, so registration doubles as the first login.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "Name, email and password are required")
	}
	if len(req.Password) < utils.MinPasswordLength {
		return fail(c, http.StatusBadRequest, "Password must be at least 6 characters long")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return fail(c, http.StatusBadRequest, "User with this email already exists")
		}
		return fail(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
	}

	session, err := utils.IssueSession(h.Cfg.JWTSecret, u)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to issue session")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "User registered successfully",
		"user":    userPartOf(u),
		"token":   session.Token,
	})
}

// Login verifies credentials and returns a fresh session token. The
// response never says whether the email or the password was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "Email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusUnauthorized, "Invalid email or password")
		}
		return fail(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
	}
	// Rows that predate hashing are never compared as plaintext; they
	// stay locked out until cmd/migrate-passwords rewrites them.
	if !utils.IsBcryptHash(u.PasswordHash) || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "Invalid email or password")
	}

	session, err := utils.IssueSession(h.Cfg.JWTSecret, u)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to issue session")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Login successful",
		"user":    userPartOf(u),
		"token":   session.Token,
	})
}

// Verify returns the fresh user record behind a valid session token.
func (h *AuthHandler) Verify(c echo.Context) error {
	ident, ok := identityFrom(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ident.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusUnauthorized, "User not found")
		}
		return fail(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    userPartOf(u),
	})
}

// ForgotPassword issues a reset token for the account, if it exists.
// The response is identical either way so the endpoint cannot be used
// to enumerate registered addresses.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return fail(c, http.StatusBadRequest, "Email is required")
	}

	ok := echo.Map{
		"success": true,
		"message": "If the email exists, a password reset link has been sent",
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Unknown address and store trouble look the same from outside.
		return c.JSON(http.StatusOK, ok)
	}

	token, err := utils.NewResetToken()
	if err != nil {
		return c.JSON(http.StatusOK, ok)
	}
	// Overwrites any prior token: at most one reset is outstanding.
	if err := h.Users.SetResetToken(ctx, u.ID, token.Raw, token.Exp); err != nil {
		return c.JSON(http.StatusOK, ok)
	}

	// Hand the token to the mail system; a broker hiccup must not
	// change the response.
	_ = queue_publisher.PublishPasswordReset(ctx, queue.PasswordResetEvent{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Token:     token.Raw,
		ExpiresAt: token.Exp.Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, ok)
}

// ResetPassword redeems a reset token and installs a new password.
// The token is single-use: redemption clears it in the same store
// operation that writes the hash.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	token := c.Param("token")
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if len(req.Password) < utils.MinPasswordLength {
		return fail(c, http.StatusBadRequest, "Password must be at least 6 characters long")
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to reset password")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Users.ConsumeResetToken(ctx, token, hash, time.Now().UTC()); err != nil {
		if err == repository.ErrResetTokenInvalid {
			return fail(c, http.StatusBadRequest, "Invalid or expired reset token")
		}
		return fail(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Password reset successfully",
	})
}

// ChangePassword lets a logged-in user rotate their password after
// re-proving the current one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	ident, ok := identityFrom(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}

	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return fail(c, http.StatusBadRequest, "Current password and new password are required")
	}
	if len(req.NewPassword) < utils.MinPasswordLength {
		return fail(c, http.StatusBadRequest, "New password must be at least 6 characters long")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ident.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusUnauthorized, "User not found")
		}
		return fail(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
	}
	if !utils.IsBcryptHash(u.PasswordHash) || !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return fail(c, http.StatusBadRequest, "Current password is incorrect")
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to change password")
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return fail(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Password changed successfully",
	})
}
