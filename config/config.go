package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service and the CLI.
type Config struct {
	DatabaseURL    string
	JWTSecretKey   string
	ServerPort     int
	AllowedOrigins []string
	LogLevel       slog.Level

	// Generation defaults, overridable by CLI flags.
	OwnerKey         string
	GenerateMatches  int
	GenerateSeed     int64
	GenerateInterval time.Duration
	AnalyticsWindow  int
	ComboInterval    string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// StorageEnabled reports whether all object storage settings are present.
func (c *Config) StorageEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	level, err := parseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	matches, err := intEnv("GENERATE_MATCHES", 5)
	if err != nil {
		return nil, err
	}
	if matches < 1 {
		return nil, fmt.Errorf("GENERATE_MATCHES must be at least 1, got %d", matches)
	}

	seed, err := strconv.ParseInt(stringEnv("GENERATE_SEED", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GENERATE_SEED environment variable: %w", err)
	}

	interval, err := time.ParseDuration(stringEnv("GENERATE_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GENERATE_INTERVAL environment variable: %w", err)
	}
	if interval < 0 {
		return nil, fmt.Errorf("GENERATE_INTERVAL must not be negative, got %s", interval)
	}

	window, err := intEnv("ANALYTICS_WINDOW", 10)
	if err != nil {
		return nil, err
	}
	if window < 1 || window > 50 {
		return nil, fmt.Errorf("ANALYTICS_WINDOW must be between 1 and 50, got %d", window)
	}

	comboInterval := strings.ToLower(stringEnv("COMBO_INTERVAL", "symmetric"))
	if comboInterval != "symmetric" && comboInterval != "wilson" {
		return nil, fmt.Errorf("COMBO_INTERVAL must be symmetric or wilson, got %q", comboInterval)
	}

	cfg := &Config{
		DatabaseURL:       dbURL,
		JWTSecretKey:      os.Getenv("JWT_SECRET_KEY"),
		ServerPort:        port,
		AllowedOrigins:    splitList(stringEnv("ALLOWED_ORIGINS", "*")),
		LogLevel:          level,
		OwnerKey:          stringEnv("OWNER_KEY", "admin"),
		GenerateMatches:   matches,
		GenerateSeed:      seed,
		GenerateInterval:  interval,
		AnalyticsWindow:   window,
		ComboInterval:     comboInterval,
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

// RequireJWT fails when no signing key is configured. Only the HTTP server
// issues and checks tokens, so the CLI commands do not call it.
func (c *Config) RequireJWT() error {
	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}
	return nil
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if raw == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}
	return level, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
