package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/database"
)

// fakeUserReader serves a single in-memory admin account.
type fakeUserReader struct {
	user *database.User
}

func (r *fakeUserReader) GetByUsername(ctx context.Context, username string) (*database.User, error) {
	if r.user == nil || r.user.Username != username {
		return nil, database.ErrNotFound
	}
	cp := *r.user
	return &cp, nil
}

func newAuthHandler(t *testing.T, password string) (*AuthHandler, *auth.TokenManager) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	tm, err := auth.NewTokenManager("test-secret", "examgate")
	if err != nil {
		t.Fatalf("creating token manager: %v", err)
	}

	users := &fakeUserReader{user: &database.User{
		ID:           1,
		Username:     "proctor",
		PasswordHash: hash,
		Role:         "admin",
	}}
	return NewAuthHandler(users, tm), tm
}

func TestLogin(t *testing.T) {
	handler, tm := newAuthHandler(t, "letmein")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username":"proctor","password":"letmein"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp LoginResponse
	decodeBody(t, rec, &resp)
	if resp.Role != "admin" {
		t.Errorf("role = %q, want admin", resp.Role)
	}

	claims, err := tm.Parse(resp.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Username != "proctor" {
		t.Errorf("token username = %q, want proctor", claims.Username)
	}
}

func TestLoginRejections(t *testing.T) {
	handler, _ := newAuthHandler(t, "letmein")

	tests := []struct {
		name     string
		body     string
		expected int
	}{
		{"wrong password", `{"username":"proctor","password":"guess"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"ghost","password":"letmein"}`, http.StatusUnauthorized},
		{"missing password", `{"username":"proctor"}`, http.StatusBadRequest},
		{"invalid json", `{username`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.Login(rec, req)

			if rec.Code != tt.expected {
				t.Errorf("status = %d, want %d", rec.Code, tt.expected)
			}
		})
	}
}

// Unknown user and wrong password must be indistinguishable to the client.
func TestLoginUniformErrorBody(t *testing.T) {
	handler, _ := newAuthHandler(t, "letmein")

	bodies := make(map[string]bool)
	for _, body := range []string{
		`{"username":"proctor","password":"guess"}`,
		`{"username":"ghost","password":"letmein"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)
		bodies[rec.Body.String()] = true
	}

	if len(bodies) != 1 {
		t.Errorf("error responses differ between unknown user and wrong password: %v", bodies)
	}
}
