package config

import (
	"net/http"
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.CookieName != "sump_session" {
		t.Errorf("CookieName = %q, want sump_session", cfg.CookieName)
	}
	if got := cfg.AbsoluteTTL(); got != 720*time.Hour {
		t.Errorf("AbsoluteTTL = %v, want 720h", got)
	}
	if got := cfg.IdleTTL(); got != 168*time.Hour {
		t.Errorf("IdleTTL = %v, want 168h", got)
	}
	if got := cfg.ResetTTL(); got != time.Hour {
		t.Errorf("ResetTTL = %v, want 1h", got)
	}
	if cfg.SecureCookies() {
		t.Error("SecureCookies = true outside production")
	}
	if got := cfg.SameSite(); got != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	setEnv(t, "SESSION_ABSOLUTE_TTL", "48h")
	setEnv(t, "SESSION_IDLE_TTL", "12h")
	setEnv(t, "COOKIE_SAMESITE", "strict")
	setEnv(t, "APP_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.AbsoluteTTL(); got != 48*time.Hour {
		t.Errorf("AbsoluteTTL = %v, want 48h", got)
	}
	if got := cfg.IdleTTL(); got != 12*time.Hour {
		t.Errorf("IdleTTL = %v, want 12h", got)
	}
	if got := cfg.SameSite(); got != http.SameSiteStrictMode {
		t.Errorf("SameSite = %v, want Strict", got)
	}
	if !cfg.SecureCookies() {
		t.Error("SecureCookies = false in production")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	setEnv(t, "BCRYPT_COST", "40")
	if _, err := Load(); err == nil {
		t.Fatal("Load accepted BCRYPT_COST=40")
	}
	setEnv(t, "BCRYPT_COST", "12")
	setEnv(t, "COOKIE_SAMESITE", "weird")
	if _, err := Load(); err == nil {
		t.Fatal("Load accepted COOKIE_SAMESITE=weird")
	}
}

func TestInvalidDurationsFallBack(t *testing.T) {
	setEnv(t, "SESSION_ABSOLUTE_TTL", "soon")
	setEnv(t, "RESET_TOKEN_TTL", "-5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.AbsoluteTTL(); got != 720*time.Hour {
		t.Errorf("AbsoluteTTL = %v, want default 720h", got)
	}
	if got := cfg.ResetTTL(); got != time.Hour {
		t.Errorf("ResetTTL = %v, want default 1h", got)
	}
}
