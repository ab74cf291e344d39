package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Database
	DatabaseURL string

	// Queue
	RedisURL          string
	WorkerConcurrency int
	QueueSize         int
	QueueTaskTimeout  time.Duration

	// Render engine
	RenderDelay       time.Duration
	RenderEngineURL   string
	RenderEngineKey   string
	RenderCallbackURL string
	RenderTimeout     time.Duration

	// Webhook
	WebhookToken string

	// Listing extraction
	AnalyzeRateLimit string
	FetchTimeout     time.Duration
	FetchMaxBytes    int64

	// Server
	Port               string
	Environment        string
	BaseURL            string
	LogLevel           string
	CORSAllowedOrigins []string
}

func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", p, err)
		}
	}
	setDefaults(v)

	cfg := &Config{
		SupabaseURL:            v.GetString("SUPABASE_URL"),
		SupabasePublishableKey: v.GetString("SUPABASE_PUBLISHABLE_KEY"),
		SupabaseJWTSecret:      v.GetString("SUPABASE_JWT_SECRET"),
		SupabaseStorageBucket:  v.GetString("SUPABASE_STORAGE_BUCKET"),

		DatabaseURL: v.GetString("DATABASE_URL"),

		RedisURL:          v.GetString("REDIS_URL"),
		WorkerConcurrency: v.GetInt("WORKER_CONCURRENCY"),
		QueueSize:         v.GetInt("QUEUE_SIZE"),
		QueueTaskTimeout:  v.GetDuration("QUEUE_TASK_TIMEOUT"),

		RenderDelay:       v.GetDuration("RENDER_DELAY"),
		RenderEngineURL:   v.GetString("RENDER_ENGINE_URL"),
		RenderEngineKey:   v.GetString("RENDER_ENGINE_KEY"),
		RenderCallbackURL: v.GetString("RENDER_CALLBACK_URL"),
		RenderTimeout:     v.GetDuration("RENDER_TIMEOUT"),

		WebhookToken: v.GetString("WEBHOOK_TOKEN"),

		AnalyzeRateLimit: v.GetString("ANALYZE_RATE_LIMIT"),
		FetchTimeout:     v.GetDuration("FETCH_TIMEOUT"),
		FetchMaxBytes:    v.GetInt64("FETCH_MAX_BYTES"),

		Port:               v.GetString("PORT"),
		Environment:        v.GetString("ENVIRONMENT"),
		BaseURL:            v.GetString("BASE_URL"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.RenderCallbackURL == "" && cfg.BaseURL != "" {
		cfg.RenderCallbackURL = strings.TrimSuffix(cfg.BaseURL, "/") + "/api/v1/webhooks/shotstack"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SUPABASE_STORAGE_BUCKET", "listing-reels")
	v.SetDefault("WORKER_CONCURRENCY", 4)
	v.SetDefault("QUEUE_SIZE", 100)
	v.SetDefault("QUEUE_TASK_TIMEOUT", "15m")
	v.SetDefault("RENDER_DELAY", "10s")
	v.SetDefault("RENDER_TIMEOUT", "0s")
	v.SetDefault("ANALYZE_RATE_LIMIT", "30-M")
	v.SetDefault("FETCH_TIMEOUT", "15s")
	v.SetDefault("FETCH_MAX_BYTES", 5<<20)
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
}

func (c *Config) Validate() error {
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.SupabaseURL != "" && c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required when SUPABASE_URL is set")
	}
	if c.WorkerConcurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("QUEUE_SIZE must be positive")
	}
	if c.RenderDelay < 0 || c.RenderTimeout < 0 {
		return fmt.Errorf("RENDER_DELAY and RENDER_TIMEOUT must not be negative")
	}
	if c.RenderEngineURL != "" && c.RenderCallbackURL == "" {
		return fmt.Errorf("RENDER_CALLBACK_URL is required when RENDER_ENGINE_URL is set")
	}
	if c.RenderEngineURL != "" && c.WebhookToken == "" {
		return fmt.Errorf("WEBHOOK_TOKEN is required when RENDER_ENGINE_URL is set")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
