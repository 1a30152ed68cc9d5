package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/socialcircles/server/internal/config"
)

const testSecret = "a-perfectly-adequate-32-byte-key!"

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
}

func TestLoad_Defaults(t *testing.T) {
	setValidEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.BcryptCost != 12 {
		t.Fatalf("expected default bcrypt cost 12, got %d", cfg.BcryptCost)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected default session TTL 24h, got %s", cfg.SessionTTL)
	}
	if !cfg.CookieSecure {
		t.Fatal("expected secure cookies by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setValidEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "1h30m")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("BCRYPT_COST", "4")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.SessionTTL != 90*time.Minute || cfg.CookieSecure || cfg.BcryptCost != 4 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for missing JWT_SECRET")
	}
}

func TestLoad_ShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "too-short")

	_, err := config.Load()
	if err == nil || !strings.Contains(err.Error(), "32") {
		t.Fatalf("expected length error, got %v", err)
	}
}

func TestLoad_BcryptCostBounds(t *testing.T) {
	setValidEnv(t)

	for _, cost := range []string{"3", "15"} {
		t.Setenv("BCRYPT_COST", cost)
		if _, err := config.Load(); err == nil {
			t.Fatalf("expected error for bcrypt cost %s", cost)
		}
	}
}

func TestLoad_NonPositiveTTL(t *testing.T) {
	setValidEnv(t)
	t.Setenv("SESSION_TTL", "-1h")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for negative SESSION_TTL")
	}
}
