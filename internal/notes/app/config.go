package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/inklingapp/inkling/pkg/jwtx"
)

// devFallbackSecret is used when JWT_SECRET is unset outside prod so the
// service can start with zero configuration during development. Tokens signed
// with it are worthless the moment a real secret is configured.
const devFallbackSecret = "inkling-dev-secret-do-not-use-in-prod!!"

type Config struct {
	JWTSecret string // Required in prod: HMAC secret for access tokens (min 32 bytes)

	AccessTokenTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTokenTTL time.Duration // Optional: refresh token lifetime (default: 168h)

	DatabaseDriver string // Optional: sqlite or postgres (default: sqlite)
	DatabaseDSN    string // Optional: driver-specific DSN (default: ./notes.db for sqlite)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-token sweep interval (default: 1h)
}

// LoadConfig reads configuration from the environment, after loading a .env
// file if one is present in the working directory.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		JWTSecret:            os.Getenv("JWT_SECRET"),
		AccessTokenTTL:       getEnvDurationOrDefault("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL:      getEnvDurationOrDefault("REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),
		DatabaseDriver:       getEnvOrDefault("DATABASE_DRIVER", "sqlite"),
		DatabaseDSN:          getEnvOrDefault("DATABASE_DSN", "notes.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate checks the configuration for problems that should stop startup.
// It also fills in the dev fallback secret when allowed, so callers should
// treat the receiver as authoritative after a nil return.
func (cfg *Config) Validate() error {
	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (want sqlite or postgres)", cfg.DatabaseDriver)
	}

	if cfg.DatabaseDriver == "postgres" && cfg.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required for the postgres driver")
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "prod" {
			return errors.New("JWT_SECRET is required in prod")
		}
		cfg.JWTSecret = devFallbackSecret
	}

	if len(cfg.JWTSecret) < jwtx.MinSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", jwtx.MinSecretLen)
	}

	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}

	return nil
}

// UsedFallbackSecret reports whether Validate filled in the dev secret, so
// the caller can log a warning about it.
func (cfg *Config) UsedFallbackSecret() bool {
	return cfg.JWTSecret == devFallbackSecret
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Accept Go duration syntax ("15m", "168h", "90s").
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// A bare integer is taken as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
