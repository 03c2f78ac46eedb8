package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, read from the environment.
type Config struct {
	Port         string
	DatabasePath string
	UseHTTPS     bool
	SeedEnabled  bool

	JWT        JWTConfig
	BcryptCost int
	OIDC       OIDCConfig

	LogLevel  slog.Level
	LogFormat string // "text" or "json"
}

// JWTConfig configures locally issued bearer tokens.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// OIDCConfig configures optional single sign-on against an external IdP.
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Enabled reports whether enough OIDC settings are present to wire SSO.
func (c OIDCConfig) Enabled() bool {
	return c.IssuerURL != "" && c.ClientID != ""
}

// Load reads a .env file when one exists, then builds the config from the environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "defect_tracker.db"),
		LogFormat:    strings.ToLower(getEnv("LOG_FORMAT", "text")),
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getEnv("JWT_ISSUER", "defect-tracker"),
		},
		OIDC: OIDCConfig{
			IssuerURL:    os.Getenv("OIDC_ISSUER_URL"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			CallbackURL:  os.Getenv("OIDC_CALLBACK_URL"),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	var err error
	if cfg.JWT.TTL, err = time.ParseDuration(getEnv("JWT_TTL", "8h")); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.BcryptCost, err = strconv.Atoi(getEnv("BCRYPT_COST", "10")); err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	if cfg.UseHTTPS, err = strconv.ParseBool(getEnv("USE_HTTPS", "false")); err != nil {
		return nil, fmt.Errorf("invalid USE_HTTPS: %w", err)
	}
	if cfg.SeedEnabled, err = strconv.ParseBool(getEnv("SEED_ENABLED", "false")); err != nil {
		return nil, fmt.Errorf("invalid SEED_ENABLED: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: must be text or json", cfg.LogFormat)
	}

	return cfg, nil
}

// NewLogger builds the process-wide structured logger.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
