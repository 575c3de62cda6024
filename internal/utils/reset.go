package utils

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// ResetTokenTTL is how long a password-reset token stays usable.
const ResetTokenTTL = time.Hour

// ResetToken is an opaque single-use token for the password-reset
// flow. Unlike the structured session JWT it has no decodable
// contents; it is only meaningful while the matching value sits on a
// user row with an unexpired reset_token_expiry.
type ResetToken struct {
	Raw string    // raw token string, delivered out of band to the user
	Exp time.Time // UTC expiration time
}

// NewResetToken returns a fresh reset token backed by 32 bytes (256
// bits) of cryptographically secure randomness, hex encoded, expiring
// ResetTokenTTL from now.
func NewResetToken() (ResetToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return ResetToken{}, err
	}
	return ResetToken{
		Raw: hex.EncodeToString(buf),
		Exp: time.Now().UTC().Add(ResetTokenTTL),
	}, nil
}
