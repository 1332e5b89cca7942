package auth

import (
	"errors"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateAccessToken(secret, "user-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	uid, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if uid != "user-123" {
		t.Fatalf("uid = %q, want user-123", uid)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken([]byte("secret-a"), "user-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken([]byte("secret-b"), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken([]byte("secret"), "not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshTokenHashFixedSize(t *testing.T) {
	token, err := GenerateRefreshToken([]byte("secret"), "user-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// Signed tokens run well past the 72 bytes a password hash would accept,
	// which is why storage uses a digest.
	if len(token) <= 72 {
		t.Fatalf("token unexpectedly short: %d bytes", len(token))
	}

	h := hashRefreshToken(token)
	if len(h) != 64 {
		t.Fatalf("digest length = %d, want 64 hex chars", len(h))
	}
	if hashRefreshToken(token) != h {
		t.Fatalf("digest must be deterministic")
	}
	if hashRefreshToken(token+"x") == h {
		t.Fatalf("distinct tokens produced the same digest")
	}
}

func TestRefreshTokenUsesOwnSecret(t *testing.T) {
	access := []byte("access-secret")
	refresh := []byte("refresh-secret")

	token, err := GenerateRefreshToken(refresh, "user-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(access, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token must not validate against the access secret")
	}
	if uid, err := ParseToken(refresh, token); err != nil || uid != "user-123" {
		t.Fatalf("parse with refresh secret = (%q, %v)", uid, err)
	}
}
