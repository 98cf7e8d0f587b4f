package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const defaultRedirectURL = "http://localhost:3000/oauth2/redirect"

// AuthRuntimeConfig is everything the token lifecycle needs at process start.
// A missing or unparsable value fails startup; nothing here is re-read at
// runtime.
type AuthRuntimeConfig struct {
	DatabaseURL string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// OAuth2RedirectURL is where the external-login success path sends the
	// browser, carrying only the opaque exchange code.
	OAuth2RedirectURL string
}

func LoadAuthRuntimeConfig() (*AuthRuntimeConfig, error) {
	cfg := &AuthRuntimeConfig{}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	cfg.JWTSecret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	var err error
	cfg.AccessTTL, err = requireDurationEnv("JWT_ACCESS_TTL")
	if err != nil {
		return nil, err
	}

	cfg.RefreshTTL, err = requireDurationEnv("REFRESH_TTL")
	if err != nil {
		return nil, err
	}

	cfg.OAuth2RedirectURL = strings.TrimSpace(getEnv("OAUTH2_REDIRECT_URL", defaultRedirectURL))

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *AuthRuntimeConfig) error {
	if cfg.AccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.RefreshTTL <= 0 {
		return fmt.Errorf("REFRESH_TTL must be > 0")
	}
	if cfg.RefreshTTL <= cfg.AccessTTL {
		return fmt.Errorf("REFRESH_TTL must be longer than JWT_ACCESS_TTL")
	}
	if cfg.OAuth2RedirectURL == "" {
		return fmt.Errorf("OAUTH2_REDIRECT_URL must not be empty")
	}
	return nil
}

func requireDurationEnv(name string) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
