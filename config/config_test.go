package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("DATABASE_URL", "postgres://localhost/telemetry?sslmode=disable")
	for _, key := range []string{
		"JWT_SECRET_KEY", "SERVER_PORT", "ALLOWED_ORIGINS", "LOG_LEVEL", "OWNER_KEY",
		"GENERATE_MATCHES", "GENERATE_SEED", "GENERATE_INTERVAL", "ANALYTICS_WINDOW", "COMBO_INTERVAL",
		"R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME", "R2_PUBLIC_BASE_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "admin", cfg.OwnerKey)
	assert.Equal(t, 5, cfg.GenerateMatches)
	assert.Equal(t, int64(0), cfg.GenerateSeed)
	assert.Equal(t, time.Duration(0), cfg.GenerateInterval)
	assert.Equal(t, 10, cfg.AnalyticsWindow)
	assert.Equal(t, "symmetric", cfg.ComboInterval)
	assert.False(t, cfg.StorageEnabled())
	assert.Error(t, cfg.RequireJWT())
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OWNER_KEY", "coach")
	t.Setenv("GENERATE_MATCHES", "12")
	t.Setenv("GENERATE_SEED", "42")
	t.Setenv("GENERATE_INTERVAL", "15m")
	t.Setenv("ANALYTICS_WINDOW", "20")
	t.Setenv("COMBO_INTERVAL", "Wilson")

	cfg, err := Load()
	require.NoError(t, err)

	assert.NoError(t, cfg.RequireJWT())
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "coach", cfg.OwnerKey)
	assert.Equal(t, 12, cfg.GenerateMatches)
	assert.Equal(t, int64(42), cfg.GenerateSeed)
	assert.Equal(t, 15*time.Minute, cfg.GenerateInterval)
	assert.Equal(t, 20, cfg.AnalyticsWindow)
	assert.Equal(t, "wilson", cfg.ComboInterval)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"missing database url", "DATABASE_URL", ""},
		{"port not a number", "SERVER_PORT", "http"},
		{"port out of range", "SERVER_PORT", "70000"},
		{"unknown log level", "LOG_LEVEL", "chatty"},
		{"zero matches", "GENERATE_MATCHES", "0"},
		{"bad seed", "GENERATE_SEED", "abc"},
		{"bad interval", "GENERATE_INTERVAL", "soon"},
		{"negative interval", "GENERATE_INTERVAL", "-1m"},
		{"window too large", "ANALYTICS_WINDOW", "51"},
		{"unknown combo interval", "COMBO_INTERVAL", "bayes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestStorageEnabled(t *testing.T) {
	cfg := &Config{
		R2AccountID:       "acc",
		R2AccessKeyID:     "key",
		R2SecretAccessKey: "secret",
		R2BucketName:      "bucket",
		R2PublicBaseURL:   "https://cdn.test",
	}
	assert.True(t, cfg.StorageEnabled())

	cfg.R2BucketName = ""
	assert.False(t, cfg.StorageEnabled())
}
