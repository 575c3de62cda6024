package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

	"github.com/iliyamo/civic-service-desk/internal/model"
)

// SessionTTL is how long a session token stays valid after issuance.
// Sessions are stateless: there is no revocation list, so an issued
// token is honored for its full lifetime.
const SessionTTL = 24 * time.Hour

// Validation failures are split so that handlers can phrase the 401
// differently for a lapsed session versus a garbage token.
var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpiredToken = errors.New("session token expired")
	// ErrNoSecret is returned when no signing secret is configured.
	// Signing with a guessable default is never acceptable, so the
	// caller must refuse to proceed.
	ErrNoSecret = errors.New("jwt secret is not configured")
)

// SessionToken represents a signed HS256 JWT along with its expiry.
// The Token field contains the serialized JWT string; Exp stores the
// UTC expiration time.
type SessionToken struct {
	Token string
	Exp   time.Time
}

// sessionClaims is the claim set embedded in every session token.
// The registered subject claim carries the user ID in decimal form.
type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// IssueSession builds and signs an HS256 JWT for a user. The claims
// are {sub, email, role, iat, exp} with exp fixed at SessionTTL from
// now. An empty secret is a configuration error, not a signable state.
func IssueSession(secret string, u model.User) (SessionToken, error) {
	if secret == "" {
		return SessionToken{}, ErrNoSecret
	}
	now := time.Now().UTC()
	exp := now.Add(SessionTTL)
	claims := sessionClaims{
		Email: u.Email,
		Role:  string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSession verifies signature and expiry of a session token and
// returns the identity embedded in it. It distinguishes an expired
// token (ErrExpiredToken) from a malformed or tampered one
// (ErrInvalidToken); callers must not conflate the two.
func ParseSession(secret, raw string) (model.Identity, error) {
	var claims sessionClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC: accepting an
		// attacker-chosen algorithm would bypass the signature check.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Identity{}, ErrExpiredToken
		}
		return model.Identity{}, ErrInvalidToken
	}
	if !tok.Valid {
		return model.Identity{}, ErrInvalidToken
	}
	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || uid == 0 {
		return model.Identity{}, ErrInvalidToken
	}
	return model.Identity{
		UserID: uid,
		Email:  claims.Email,
		Role:   model.Role(claims.Role),
	}, nil
}
