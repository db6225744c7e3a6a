package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewToken("secret", "issuer", time.Hour, Claims{
		ID:       "user-1",
		Role:     "teacher",
		Email:    "t@example.local",
		SchoolID: "school-1",
	})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	claims, err := ParseToken("secret", "issuer", token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.ID != "user-1" || claims.Role != "teacher" || claims.SchoolID != "school-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := NewToken("secret", "issuer", -time.Minute, Claims{ID: "user-1"})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", "issuer", token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := NewToken("secret", "issuer", time.Hour, Claims{ID: "user-1"})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("other", "issuer", token); err == nil {
		t.Fatalf("expected bad signature to be rejected")
	}
}

func TestWrongIssuerRejected(t *testing.T) {
	token, err := NewToken("secret", "issuer-a", time.Hour, Claims{ID: "user-1"})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", "issuer-b", token); err == nil {
		t.Fatalf("expected wrong issuer to be rejected")
	}
}
