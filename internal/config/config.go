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

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL      string
	Port             string
	GoogleMapsAPIKey string
	HunterAPIKey     string
	EnrichTimeout    time.Duration
	RateLimitEnrich  RateLimitConfig
	RateLimitSearch  RateLimitConfig
	CORSOrigins      []string
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		Port:             getEnv("PORT", "8080"),
		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		HunterAPIKey:     os.Getenv("HUNTER_API_KEY"),
		EnrichTimeout:    parseDuration(getEnv("ENRICH_TIMEOUT", "8s"), 8*time.Second),
		CORSOrigins:      splitOrigins(getEnv("CORS_ORIGINS", "*")),
	}

	enrich, err := parseRateLimit(getEnv("RATE_LIMIT_ENRICH", "10/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_ENRICH value: %w", err)
	}
	cfg.RateLimitEnrich = enrich

	search, err := parseRateLimit(getEnv("RATE_LIMIT_SEARCH", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SEARCH value: %w", err)
	}
	cfg.RateLimitSearch = search

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

func splitOrigins(value string) []string {
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
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
