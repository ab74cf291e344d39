package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
	assert.Equal(t, 100, cfg.QueueSize)
	assert.Equal(t, 10*time.Second, cfg.RenderDelay)
	assert.Equal(t, time.Duration(0), cfg.RenderTimeout)
	assert.Equal(t, "30-M", cfg.AnalyzeRateLimit)
	assert.Equal(t, int64(5<<20), cfg.FetchMaxBytes)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "http://localhost:8080/api/v1/webhooks/shotstack", cfg.RenderCallbackURL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("RENDER_DELAY", "250ms")
	t.Setenv("WORKER_CONCURRENCY", "9")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://app.example.com , ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.RenderDelay)
	assert.Equal(t, 9, cfg.WorkerConcurrency)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("SUPABASE_JWT_SECRET: from-file\nQUEUE_SIZE: 7\n"), 0o600))

	t.Setenv("SUPABASE_JWT_SECRET", "")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.SupabaseJWTSecret)
	assert.Equal(t, 7, cfg.QueueSize)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "")
	t.Setenv("CONFIG_FILE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_JWT_SECRET")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{SupabaseJWTSecret: "s", WorkerConcurrency: 1, QueueSize: 1}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.SupabaseURL = "https://x.supabase.co"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.RenderEngineURL = "https://render.example.com"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.RenderEngineURL = "https://render.example.com"
	cfg.RenderCallbackURL = "https://api.example.com/api/v1/webhooks/shotstack"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEBHOOK_TOKEN")

	cfg.WebhookToken = "hook-secret"
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.RenderDelay = -time.Second
	assert.Error(t, cfg.Validate())
}
