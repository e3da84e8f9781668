package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gerfey/planit/pkg/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, config.EnvDevelopment, cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.Empty(t, cfg.Server.TrustedPlatform)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Auth.ConcealOwnership)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, int64(100), cfg.RateLimit.Max)
	assert.Equal(t, []string{"https://nwosehstasks.netlify.app", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	require.NotNil(t, cfg.CORS.OriginPattern)
	assert.True(t, cfg.CORS.OriginPattern.MatchString("https://deploy-preview-12--nwosehstasks.netlify.app"))
	assert.False(t, cfg.CORS.OriginPattern.MatchString("https://evil.example.com"))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/tasks")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("AUTH_CONCEAL_OWNERSHIP", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("JWT_TOKEN_TTL", "1h")
	t.Setenv("SERVER_TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.1")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.Server.TrustedProxies)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Auth.ConcealOwnership)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, int64(5), cfg.RateLimit.Max)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "postgres://u:p@db:5432/tasks?sslmode=require", cfg.Database.GetDSN(cfg.IsProduction()))
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := config.LoadConfig(t.TempDir())
	require.ErrorIs(t, err, config.ErrMissingJWTSecret)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  port: "9090"
database:
  driver: pgx
  dbname: planit
rate_limit:
  window: 1m
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "postgres://postgres:@localhost:5432/planit?sslmode=disable", cfg.Database.GetDSN(false))
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Run("duration", func(t *testing.T) {
		t.Setenv("JWT_TOKEN_TTL", "tomorrow")

		_, err := config.LoadConfig(t.TempDir())
		require.Error(t, err)
	})

	t.Run("driver", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "mysql")

		_, err := config.LoadConfig(t.TempDir())
		require.Error(t, err)
	})
}

func TestGetDSN_KeepsExplicitSSLMode(t *testing.T) {
	db := config.DatabaseConfig{URL: "postgres://u:p@db/tasks?sslmode=verify-full"}

	assert.Equal(t, "postgres://u:p@db/tasks?sslmode=verify-full", db.GetDSN(true))
	assert.Equal(t, "postgres://u:p@db/tasks?sslmode=verify-full", db.GetDSN(false))
}
