package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tm, err := NewTokenManager("test-secret", "examgate")
	if err != nil {
		t.Fatalf("NewTokenManager() error: %v", err)
	}

	signed, expiresAt, err := tm.Generate("proctor", "admin")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Errorf("expiresAt %v is not in the future", expiresAt)
	}

	claims, err := tm.Parse(signed)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if claims.Username != "proctor" {
		t.Errorf("Username = %q, want proctor", claims.Username)
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q, want admin", claims.Role)
	}
	if claims.Issuer != "examgate" {
		t.Errorf("Issuer = %q, want examgate", claims.Issuer)
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	tm, err := NewTokenManager("test-secret", "examgate")
	if err != nil {
		t.Fatal(err)
	}

	signed, _, err := tm.Generate("proctor", "admin")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"truncated", signed[:len(signed)-5]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tm.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tm1, err := NewTokenManager("secret-one", "examgate")
	if err != nil {
		t.Fatal(err)
	}
	tm2, err := NewTokenManager("secret-two", "examgate")
	if err != nil {
		t.Fatal(err)
	}

	signed, _, err := tm1.Generate("proctor", "admin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tm2.Parse(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse() with wrong secret error = %v, want ErrInvalidToken", err)
	}
}

func TestNewTokenManagerEmptySecret(t *testing.T) {
	if _, err := NewTokenManager("", "examgate"); err == nil {
		t.Error("NewTokenManager() accepted an empty secret")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Error("HashPassword() returned the plaintext")
	}

	if !CheckPassword(hash, "correct horse battery staple") {
		t.Error("CheckPassword() rejected the correct password")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("CheckPassword() accepted a wrong password")
	}
}
