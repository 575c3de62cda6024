package handler_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/civic-service-desk/internal/config"
	"github.com/iliyamo/civic-service-desk/internal/handler"
	"github.com/iliyamo/civic-service-desk/internal/middleware"
	"github.com/iliyamo/civic-service-desk/internal/model"
	"github.com/iliyamo/civic-service-desk/internal/repository"
	"github.com/iliyamo/civic-service-desk/internal/utils"
)

// fakeUserStore keeps users in memory and mimics the error contract of
// repository.UserRepo: lookups return sql.ErrNoRows, duplicate emails
// return repository.ErrEmailExists.
type fakeUserStore struct {
	users  map[uint64]*model.User
	nextID uint64
	err    error // when set, every method fails with it
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint64]*model.User), nextID: 1}
}

func (s *fakeUserStore) add(t *testing.T, name, email, password string, role model.Role) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := &model.User{
		ID:           s.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	s.nextID++
	s.users[u.ID] = u
	return *u
}

func (s *fakeUserStore) Create(ctx context.Context, name, email, password string, cost int) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	for _, u := range s.users {
		if u.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	u := &model.User{
		ID:           s.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleCitizen,
		CreatedAt:    time.Now().UTC(),
	}
	s.nextID++
	s.users[u.ID] = u
	return *u, nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	for _, u := range s.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	if u, ok := s.users[id]; ok {
		return *u, nil
	}
	return model.User{}, sql.ErrNoRows
}

func (s *fakeUserStore) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	if s.err != nil {
		return s.err
	}
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = hash
	return nil
}

func (s *fakeUserStore) SetResetToken(ctx context.Context, id uint64, token string, expiry time.Time) error {
	if s.err != nil {
		return s.err
	}
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.ResetToken = &token
	u.ResetTokenExpiry = &expiry
	return nil
}

func (s *fakeUserStore) ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	for _, u := range s.users {
		if u.ResetToken != nil && *u.ResetToken == token &&
			u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now) {
			u.PasswordHash = newHash
			u.ResetToken = nil
			u.ResetTokenExpiry = nil
			return *u, nil
		}
	}
	return model.User{}, repository.ErrResetTokenInvalid
}

// ----- harness -----

var testCfg = config.Config{JWTSecret: "auth-test-secret", BcryptCost: 4}

func newAuthHandler(store *fakeUserStore) *handler.AuthHandler {
	return handler.NewAuthHandler(testCfg, store)
}

func postJSON(t *testing.T, h echo.HandlerFunc, target, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if bearer != "" {
		h = middleware.Authenticate(testCfg.JWTSecret)(h)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return m
}

func tokenFor(t *testing.T, u model.User) string {
	t.Helper()
	session, err := utils.IssueSession(testCfg.JWTSecret, u)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	return session.Token
}

// ----- tests -----

func TestRegisterIssuesSession(t *testing.T) {
	store := newFakeUserStore()
	h := newAuthHandler(store)

	rec := postJSON(t, h.Register, "/auth/register",
		`{"name":"Dana","email":"dana@example.com","password":"hunter22"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %q)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["token"] == "" || body["token"] == nil {
		t.Error("expected a session token in the response")
	}
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("user part missing in %v", body)
	}
	if user["role"] != "citizen" {
		t.Errorf("role = %v, want citizen", user["role"])
	}
	if _, had := user["passwordHash"]; had {
		t.Error("response leaked the password hash")
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	h := newAuthHandler(newFakeUserStore())
	rec := postJSON(t, h.Register, "/auth/register",
		`{"name":"Dana","email":"dana@example.com","password":"abc"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	store.add(t, "Dana", "dana@example.com", "hunter22", model.RoleCitizen)
	h := newAuthHandler(store)

	rec := postJSON(t, h.Register, "/auth/register",
		`{"name":"Other","email":"dana@example.com","password":"hunter22"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already exists") {
		t.Errorf("body = %q, want duplicate-email message", rec.Body.String())
	}
}

func TestLoginSuccess(t *testing.T) {
	store := newFakeUserStore()
	store.add(t, "Dana", "dana@example.com", "hunter22", model.RoleCitizen)
	h := newAuthHandler(store)

	rec := postJSON(t, h.Login, "/auth/login",
		`{"email":"dana@example.com","password":"hunter22"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["token"] == "" || body["token"] == nil {
		t.Error("expected a session token in the response")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	store := newFakeUserStore()
	store.add(t, "Dana", "dana@example.com", "hunter22", model.RoleCitizen)
	h := newAuthHandler(store)

	cases := []struct {
		name string
		body string
	}{
		{"wrong password", `{"email":"dana@example.com","password":"wrong-pass"}`},
		{"unknown email", `{"email":"nobody@example.com","password":"hunter22"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, h.Login, "/auth/login", tc.body, "")
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			// Same message for both failure modes.
			if !strings.Contains(rec.Body.String(), "Invalid email or password") {
				t.Errorf("body = %q, want the generic credential message", rec.Body.String())
			}
		})
	}
}

func TestLoginLocksOutUnmigratedHash(t *testing.T) {
	store := newFakeUserStore()
	u := store.add(t, "Old", "old@example.com", "whatever1", model.RoleCitizen)
	// Simulate a legacy row that still holds the raw password.
	store.users[u.ID].PasswordHash = "plaintext-password"
	h := newAuthHandler(store)

	rec := postJSON(t, h.Login, "/auth/login",
		`{"email":"old@example.com","password":"plaintext-password"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 even when the stored value matches", rec.Code)
	}
}

func TestVerifyReturnsFreshUser(t *testing.T) {
	store := newFakeUserStore()
	u := store.add(t, "Dana", "dana@example.com", "hunter22", model.RoleCitizen)
	h := newAuthHandler(store)

	// The record may have changed since the token was issued.
	store.users[u.ID].Name = "Dana Renamed"

	rec := postJSON(t, h.Verify, "/auth/verify", "", tokenFor(t, u))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	user, _ := body["user"].(map[string]any)
	if user["name"] != "Dana Renamed" {
		t.Errorf("name = %v, want the current record, not the token claims", user["name"])
	}
}

func TestForgotPasswordIsUniformAndStoresToken(t *testing.T) {
	store := newFakeUserStore()
	u := store.add(t, "Dana", "dana@example.com", "hunter22", model.RoleCitizen)
	h := newAuthHandler(store)

	known := postJSON(t, h.ForgotPassword, "/auth/forgot-password",
		`{"email":"dana@example.com"}`, "")
	unknown := postJSON(t, h.ForgotPassword, "/auth/forgot-password",
		`{"email":"nobody@example.com"}`, "")

	if known.Code != http.StatusOK || unknown.Code != http.StatusOK {
		t.Fatalf("statuses = %d/%d, want 200/200", known.Code, unknown.Code)
	}
	if known.Body.String() != unknown.Body.String() {
		t.Errorf("responses differ: %q vs %q", known.Body.String(), unknown.Body.String())
	}
	if store.users[u.ID].ResetToken == nil {
		t.Fatal("no reset token stored for the known address")
	}
	if got := len(*store.users[u.ID].ResetToken); got != 64 {
		t.Errorf("token length = %d, want 64 hex chars", got)
	}
}

func TestResetPasswordRedeemsTokenOnce(t *testing.T) {
	store := newFakeUserStore()
	u := store.add(t, "Dana", "dana@example.com", "oldpass1", model.RoleCitizen)
	token := "a-reset-token"
	exp := time.Now().UTC().Add(time.Hour)
	store.users[u.ID].ResetToken = &token
	store.users[u.ID].ResetTokenExpiry = &exp
	h := newAuthHandler(store)

	reset := func() *httptest.ResponseRecorder {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/auth/reset-password/"+token,
			strings.NewReader(`{"password":"newpass22"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("token")
		c.SetParamValues(token)
		if err := h.ResetPassword(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		return rec
	}

	if rec := reset(); rec.Code != http.StatusOK {
		t.Fatalf("first redemption = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}
	if !utils.VerifyPassword(store.users[u.ID].PasswordHash, "newpass22") {
		t.Error("stored hash does not verify against the new password")
	}
	if store.users[u.ID].ResetToken != nil {
		t.Error("reset token survived redemption")
	}

	if rec := reset(); rec.Code != http.StatusBadRequest {
		t.Errorf("second redemption = %d, want 400", rec.Code)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	store := newFakeUserStore()
	u := store.add(t, "Dana", "dana@example.com", "oldpass1", model.RoleCitizen)
	token := "stale-token"
	exp := time.Now().UTC().Add(-time.Minute)
	store.users[u.ID].ResetToken = &token
	store.users[u.ID].ResetTokenExpiry = &exp
	h := newAuthHandler(store)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/reset-password/"+token,
		strings.NewReader(`{"password":"newpass22"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("token")
	c.SetParamValues(token)
	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for an expired token", rec.Code)
	}
	if !utils.VerifyPassword(store.users[u.ID].PasswordHash, "oldpass1") {
		t.Error("expired redemption changed the password")
	}
}

func TestChangePassword(t *testing.T) {
	store := newFakeUserStore()
	u := store.add(t, "Dana", "dana@example.com", "oldpass1", model.RoleCitizen)
	h := newAuthHandler(store)

	rec := postJSON(t, h.ChangePassword, "/auth/change-password",
		`{"currentPassword":"wrong","newPassword":"newpass22"}`, tokenFor(t, u))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("wrong current password: status = %d, want 400", rec.Code)
	}

	rec = postJSON(t, h.ChangePassword, "/auth/change-password",
		`{"currentPassword":"oldpass1","newPassword":"newpass22"}`, tokenFor(t, u))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}
	if !utils.VerifyPassword(store.users[u.ID].PasswordHash, "newpass22") {
		t.Error("stored hash does not verify against the new password")
	}
}
