package config

import (
	"os"
	"testing"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/hms_test")
	defer os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.DBMaxConns != 20 {
		t.Errorf("expected default max conns 20, got %d", cfg.DBMaxConns)
	}
	if !cfg.IsDev() {
		t.Error("expected default env to be development")
	}
	if cfg.JWTSecret == "" {
		t.Error("expected a development JWT secret to be filled in")
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/hms_test")
	os.Setenv("ENV", "production")
	os.Unsetenv("JWT_SECRET")
	defer func() {
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("ENV")
	}()

	if _, err := Load(); err == nil {
		t.Error("expected error when JWT_SECRET missing in production")
	}
}

func TestTokenTTL(t *testing.T) {
	cfg := &Config{TokenTTLHours: 12}
	if cfg.TokenTTL().Hours() != 12 {
		t.Errorf("expected 12h TTL, got %v", cfg.TokenTTL())
	}
}
