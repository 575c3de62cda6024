package utils

import (
	"testing"
	"time"
)

func TestHashPasswordNeverStoresPlaintext(t *testing.T) {
	for _, plain := range []string{"secret1", "correct horse battery staple", "短い"} {
		hash, err := HashPassword(plain, 4) // minimum cost keeps the test fast
		if err != nil {
			t.Fatalf("HashPassword(%q): %v", plain, err)
		}
		if hash == plain {
			t.Errorf("hash equals plaintext for %q", plain)
		}
		if !IsBcryptHash(hash) {
			t.Errorf("hash %q missing bcrypt prefix", hash)
		}
		if !VerifyPassword(hash, plain) {
			t.Errorf("VerifyPassword rejected the correct password %q", plain)
		}
		if VerifyPassword(hash, plain+"x") {
			t.Errorf("VerifyPassword accepted a wrong password for %q", plain)
		}
	}
}

func TestIsBcryptHash(t *testing.T) {
	if IsBcryptHash("plaintext-password") {
		t.Error("plaintext classified as bcrypt")
	}
	if !IsBcryptHash("$2a$10$abcdefghijklmnopqrstuv") {
		t.Error("bcrypt prefix not recognized")
	}
}

func TestNewResetToken(t *testing.T) {
	a, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	b, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	if len(a.Raw) != 64 { // 32 bytes hex encoded
		t.Errorf("token length = %d, want 64", len(a.Raw))
	}
	if a.Raw == b.Raw {
		t.Error("two reset tokens collided")
	}
	until := time.Until(a.Exp)
	if until < ResetTokenTTL-time.Minute || until > ResetTokenTTL {
		t.Errorf("expiry %s away, want about %s", until, ResetTokenTTL)
	}
}
