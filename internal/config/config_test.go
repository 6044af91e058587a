package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Run("should apply defaults in debug mode", func(t *testing.T) {
		t.Setenv("DEBUG", "true")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 100, cfg.RateLimitRPS)
		assert.Equal(t, 30*time.Second, cfg.CacheTTL)
		assert.Equal(t, time.Minute, cfg.IngestWindow)
		assert.Equal(t, 60, cfg.IngestLimit)
		assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Empty(t, cfg.Warnings)
	})

	t.Run("should require a strong JWT secret outside debug mode", func(t *testing.T) {
		t.Setenv("DEBUG", "false")
		t.Setenv("JWT_SECRET", "short")

		_, err := FromEnv()
		assert.ErrorIs(t, err, ErrWeakJWTSecret)
	})
}

func TestFromEnvParsing(t *testing.T) {
	t.Setenv("DEBUG", "0")
	t.Setenv("JWT_SECRET", "0123456789abcdef-secret")

	t.Run("should parse numbers and durations", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_RPS", "250")
		t.Setenv("CACHE_TTL", "2m")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, 250, cfg.RateLimitRPS)
		assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
		assert.False(t, cfg.Debug)
	})

	t.Run("should fall back to defaults on invalid values", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_RPS", "lots")
		t.Setenv("CACHE_TTL", "soon")
		t.Setenv("MINIO_USE_SSL", "maybe")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.RateLimitRPS)
		assert.Equal(t, 30*time.Second, cfg.CacheTTL)
		assert.False(t, cfg.MinioUseSSL)
		assert.Len(t, cfg.Warnings, 3)
	})

	t.Run("should read the ingest window", func(t *testing.T) {
		t.Setenv("INGEST_WINDOW", "30s")
		t.Setenv("INGEST_LIMIT", "5")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, cfg.IngestWindow)
		assert.Equal(t, 5, cfg.IngestLimit)
	})

	t.Run("should reject an empty ingest window", func(t *testing.T) {
		t.Setenv("INGEST_WINDOW", "0s")
		t.Setenv("INGEST_LIMIT", "-3")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, time.Minute, cfg.IngestWindow)
		assert.Equal(t, 60, cfg.IngestLimit)
		assert.Len(t, cfg.Warnings, 2)
	})

	t.Run("should accept common boolean spellings", func(t *testing.T) {
		t.Setenv("MINIO_USE_SSL", "TRUE")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.True(t, cfg.MinioUseSSL)
	})

	t.Run("should split allowed origins", func(t *testing.T) {
		t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,,")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	})
}
