package app

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inklingapp/inkling/pkg/jwtx"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	require.Equal(t, jwtx.DefaultAccessTokenTTL, cfg.AccessTokenTTL)
	require.Equal(t, jwtx.DefaultRefreshTokenTTL, cfg.RefreshTokenTTL)
	require.Equal(t, "sqlite", cfg.DatabaseDriver)
	require.Equal(t, "notes.db", cfg.DatabaseDSN)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("REFRESH_TOKEN_TTL", "24h")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "postgres://localhost/notes")
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "prod")
	t.Setenv("HOUSEKEEPING_INTERVAL", "30")

	cfg := LoadConfig()

	require.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.Equal(t, "postgres://localhost/notes", cfg.DatabaseDSN)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, "prod", cfg.Env)
	// Bare integers are minutes.
	require.Equal(t, 30*time.Minute, cfg.HousekeepingInterval)
}

func TestLoadConfigIgnoresGarbage(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("ACCESS_TOKEN_TTL", "soon")

	cfg := LoadConfig()

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, jwtx.DefaultAccessTokenTTL, cfg.AccessTokenTTL)
}

func TestConfigValidate(t *testing.T) {
	base := func() Config {
		cfg := LoadConfig()
		cfg.JWTSecret = strings.Repeat("s", jwtx.MinSecretLen)
		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		cfg := base()
		require.NoError(t, cfg.Validate())
		require.False(t, cfg.UsedFallbackSecret())
	})

	t.Run("dev fallback secret", func(t *testing.T) {
		cfg := base()
		cfg.JWTSecret = ""
		require.NoError(t, cfg.Validate())
		require.True(t, cfg.UsedFallbackSecret())
		require.GreaterOrEqual(t, len(cfg.JWTSecret), jwtx.MinSecretLen)
	})

	t.Run("missing secret in prod", func(t *testing.T) {
		cfg := base()
		cfg.Env = "prod"
		cfg.JWTSecret = ""
		require.Error(t, cfg.Validate())
	})

	t.Run("short secret", func(t *testing.T) {
		cfg := base()
		cfg.JWTSecret = "short"
		require.Error(t, cfg.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := base()
		cfg.DatabaseDriver = "oracle"
		require.Error(t, cfg.Validate())
	})

	t.Run("postgres needs a dsn", func(t *testing.T) {
		cfg := base()
		cfg.DatabaseDriver = "postgres"
		cfg.DatabaseDSN = ""
		require.Error(t, cfg.Validate())
	})

	t.Run("non-positive ttl", func(t *testing.T) {
		cfg := base()
		cfg.AccessTokenTTL = 0
		require.Error(t, cfg.Validate())
	})
}
