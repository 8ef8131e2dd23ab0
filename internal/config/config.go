package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// WebhookConfig controls how outbound webhook calls are attempted.
type WebhookConfig struct {
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
	Audience    string
}

// ApifyConfig controls the scraper actor client.
type ApifyConfig struct {
	BaseURL      string
	PollInterval time.Duration
	MaxPolls     int
}

// MinIOConfig contains connection options for the raw dataset archive.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
}

// Enabled reports whether an archive endpoint has been configured.
func (m MinIOConfig) Enabled() bool {
	return m.Endpoint != "" && m.AccessKeyID != "" && m.SecretAccessKey != ""
}

// RedisConfig holds the cache and task queue connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL        string
	JWTSecret          string
	Port               string
	MigrateOnStart     bool
	DefaultPhoneRegion string
	OpenAIModel        string
	EnrichDelay        time.Duration
	SettingsCacheTTL   time.Duration
	WorkerConcurrency  int
	RateLimitEnrich    RateLimitConfig
	Webhook            WebhookConfig
	Apify              ApifyConfig
	MinIO              MinIOConfig
	Redis              RedisConfig
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret"),
		Port:               getEnv("PORT", "8080"),
		MigrateOnStart:     parseBool(getEnv("MIGRATE_ON_START", "true"), true),
		DefaultPhoneRegion: getEnv("DEFAULT_PHONE_REGION", "US"),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		EnrichDelay:        parseDuration(getEnv("ENRICH_DELAY", "3s"), 3*time.Second),
		SettingsCacheTTL:   parseDuration(getEnv("SETTINGS_CACHE_TTL", "5m"), 5*time.Minute),
		WorkerConcurrency:  parseInt(getEnv("WORKER_CONCURRENCY", "4"), 4),
		Webhook: WebhookConfig{
			Timeout:     parseDuration(getEnv("WEBHOOK_TIMEOUT", "30s"), 30*time.Second),
			MaxAttempts: parseInt(getEnv("WEBHOOK_MAX_ATTEMPTS", "2"), 2),
			Backoff:     parseDuration(getEnv("WEBHOOK_BACKOFF", "500ms"), 500*time.Millisecond),
			Audience:    os.Getenv("WEBHOOK_AUDIENCE"),
		},
		Apify: ApifyConfig{
			BaseURL:      getEnv("APIFY_BASE_URL", "https://api.apify.com"),
			PollInterval: parseDuration(getEnv("APIFY_POLL_INTERVAL", "10s"), 10*time.Second),
			MaxPolls:     parseInt(getEnv("APIFY_MAX_POLLS", "30"), 30),
		},
		MinIO: MinIOConfig{
			Endpoint:        os.Getenv("MINIO_ENDPOINT"),
			AccessKeyID:     os.Getenv("MINIO_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("MINIO_SECRET_ACCESS_KEY"),
			UseSSL:          parseBool(getEnv("MINIO_USE_SSL", "false"), false),
			Bucket:          getEnv("MINIO_BUCKET", "search-results"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
	}

	if cfg.Webhook.MaxAttempts < 1 {
		cfg.Webhook.MaxAttempts = 1
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_ENRICH", "30/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_ENRICH value: %w", err)
	}
	cfg.RateLimitEnrich = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(input string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return fallback
	}
	return v
}

func parseBool(input string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(input))
	if err != nil {
		return fallback
	}
	return v
}
