package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestMiddleware_ValidToken(t *testing.T) {
	ts := NewTokenService("test-secret", time.Hour)
	id := uuid.New()
	tok, err := ts.Issue(id, "alice", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen *Actor
	handler := func(c echo.Context) error {
		seen = ActorFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Middleware(ts, nil)(handler)(c); err != nil {
		t.Fatalf("expected pass-through, got %v", err)
	}
	if seen == nil {
		t.Fatal("expected actor in request context")
	}
	if seen.AccountID != id || seen.Username != "alice" {
		t.Errorf("unexpected actor: %+v", seen)
	}
}

func TestMiddleware_Rejections(t *testing.T) {
	ts := NewTokenService("test-secret", time.Hour)
	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"malformed token", "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/patients", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := Middleware(ts, nil)(handler)(c)
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401 HTTPError, got %v", err)
			}
		})
	}
}

func TestMiddleware_Skipper(t *testing.T) {
	ts := NewTokenService("test-secret", time.Hour)
	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/token", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	skip := PathSkipper("/auth/token", "/health")
	if err := Middleware(ts, skip)(handler)(c); err != nil {
		t.Fatalf("expected skipped path to pass without token, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "s3cret") {
		t.Error("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
}
