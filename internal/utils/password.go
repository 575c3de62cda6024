package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced at registration, password change and
// password reset alike.
const MinPasswordLength = 6

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
// bcrypt's comparison is constant-time with respect to the hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IsBcryptHash reports whether a stored credential looks like a bcrypt
// digest. Rows that fail this check are legacy plaintext records and
// must be migrated with cmd/migrate-passwords before their owners can
// log in; the login path itself never compares plaintext.
func IsBcryptHash(stored string) bool {
	return strings.HasPrefix(stored, "$2")
}
