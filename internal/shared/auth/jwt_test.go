package auth

import (
	"strings"
	"testing"
	"time"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	token, err := SignJWT(Claims{Sub: "google:1", Email: "jane@example.com", Name: "Jane Doe"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token has %d dots, want 2", strings.Count(token, "."))
	}

	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if claims.Sub != "google:1" || claims.Email != "jane@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Exp <= claims.Iat {
		t.Fatalf("exp %d not after iat %d", claims.Exp, claims.Iat)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	token, err := SignJWT(Claims{Sub: "google:1"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + ".AAAA"
	if _, err := VerifyJWT(tampered); err == nil {
		t.Fatal("expected tampered token to fail")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	past := time.Now().UTC().Add(-2 * time.Hour).Unix()
	token, err := SignJWT(Claims{Sub: "google:1", Iat: past, Exp: past + 60})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	if _, err := VerifyJWT(token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestTokenTTLEnvOverride(t *testing.T) {
	t.Setenv("JWT_TTL", "1h")
	if got := tokenTTL(); got != time.Hour {
		t.Fatalf("ttl = %v, want 1h", got)
	}
	t.Setenv("JWT_TTL", "garbage")
	if got := tokenTTL(); got != 24*time.Hour {
		t.Fatalf("ttl fallback = %v, want 24h", got)
	}
}
