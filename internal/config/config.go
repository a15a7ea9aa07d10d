// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// PasswordMinLength is the minimum accepted password length; default 8.
	PasswordMinLength int `mapstructure:"PASSWORD_MIN_LENGTH"`
	// PasswordMaxLength is the maximum accepted password length; default 72 (bcrypt input limit).
	PasswordMaxLength int `mapstructure:"PASSWORD_MAX_LENGTH"`
	// SessionAbsoluteTTL is the fixed session lifetime (e.g. "720h" for 30 days).
	SessionAbsoluteTTL string `mapstructure:"SESSION_ABSOLUTE_TTL"`
	// SessionIdleTTL is the maximum inactivity gap before a session expires (e.g. "168h" for 7 days).
	SessionIdleTTL string `mapstructure:"SESSION_IDLE_TTL"`
	// ResetTokenTTL is the password-reset token lifetime (e.g. "1h").
	ResetTokenTTL string `mapstructure:"RESET_TOKEN_TTL"`
	// CookieName is the session cookie name.
	CookieName string `mapstructure:"COOKIE_NAME"`
	// CookieSecret is the HMAC key used to sign the session cookie. Required by cmd/server.
	CookieSecret string `mapstructure:"COOKIE_SECRET"`
	// CookieSameSite is the SameSite attribute: "lax", "strict", or "none". Default lax.
	CookieSameSite string `mapstructure:"COOKIE_SAMESITE"`
	// CleanupInterval is how often the worker purges expired sessions and reset tokens.
	CleanupInterval string `mapstructure:"CLEANUP_INTERVAL"`
	// OTLPEndpoint is the OTLP gRPC collector endpoint; empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
	// Env is the application environment (e.g. "development", "production").
	// The session cookie carries the Secure attribute when Env is production.
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("PASSWORD_MIN_LENGTH", 8)
	v.SetDefault("PASSWORD_MAX_LENGTH", 72)
	v.SetDefault("SESSION_ABSOLUTE_TTL", "720h") // 30d
	v.SetDefault("SESSION_IDLE_TTL", "168h")     // 7d
	v.SetDefault("RESET_TOKEN_TTL", "1h")
	v.SetDefault("COOKIE_NAME", "sump_session")
	v.SetDefault("COOKIE_SECRET", "")
	v.SetDefault("COOKIE_SAMESITE", "lax")
	v.SetDefault("CLEANUP_INTERVAL", "1h")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if cfg.PasswordMinLength < 1 || cfg.PasswordMaxLength < cfg.PasswordMinLength {
		return nil, errors.New("config: PASSWORD_MIN_LENGTH and PASSWORD_MAX_LENGTH must be positive and ordered")
	}
	switch strings.ToLower(cfg.CookieSameSite) {
	case "", "lax", "strict", "none":
	default:
		return nil, errors.New("config: COOKIE_SAMESITE must be lax, strict, or none")
	}

	return &cfg, nil
}

// AbsoluteTTL parses SessionAbsoluteTTL as a time.Duration. Returns 720h if unset or invalid.
func (c *Config) AbsoluteTTL() time.Duration {
	d, err := time.ParseDuration(c.SessionAbsoluteTTL)
	if err != nil || d <= 0 {
		return 720 * time.Hour
	}
	return d
}

// IdleTTL parses SessionIdleTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) IdleTTL() time.Duration {
	d, err := time.ParseDuration(c.SessionIdleTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// ResetTTL parses ResetTokenTTL as a time.Duration. Returns 1h if unset or invalid.
func (c *Config) ResetTTL() time.Duration {
	d, err := time.ParseDuration(c.ResetTokenTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// CleanupEvery parses CleanupInterval as a time.Duration. Returns 1h if unset or invalid.
func (c *Config) CleanupEvery() time.Duration {
	d, err := time.ParseDuration(c.CleanupInterval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// SameSite maps CookieSameSite to the http.SameSite attribute. Defaults to Lax.
func (c *Config) SameSite() http.SameSite {
	switch strings.ToLower(c.CookieSameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// SecureCookies reports whether session cookies must carry the Secure attribute.
func (c *Config) SecureCookies() bool {
	return c.Env == "production"
}
