package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultFeishuBaseURL = "https://open.feishu.cn"
	defaultEncKey        = "dev-insecure-key-change-me"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// FeishuDefaults is the process-wide destination used when neither the request
// nor the caller's saved config supplies one.
type FeishuDefaults struct {
	AppID           string
	AppSecret       string
	TableID         string
	BitableAppToken string
}

// FetchConfig controls how target pages are retrieved.
type FetchConfig struct {
	Timeout       time.Duration
	UserAgent     string
	MaxBytes      int64
	RenderEnabled bool
	RenderTimeout time.Duration
	// AllowPrivate lets /extract reach loopback and private network hosts.
	AllowPrivate bool
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port             string
	LogLevel         string
	DatabaseURL      string
	DatabaseMaxConns int32
	JWTSecret        string
	ConfigEncKey     string
	FeishuBaseURL    string
	Feishu           FeishuDefaults
	Fetch            FetchConfig
	RateLimitExtract RateLimitConfig
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		ConfigEncKey:  getEnv("CONFIG_ENC_KEY", defaultEncKey),
		FeishuBaseURL: strings.TrimRight(getEnv("FEISHU_BASE_URL", defaultFeishuBaseURL), "/"),
		Feishu: FeishuDefaults{
			AppID:           os.Getenv("FEISHU_APP_ID"),
			AppSecret:       os.Getenv("FEISHU_APP_SECRET"),
			TableID:         os.Getenv("FEISHU_TABLE_ID"),
			BitableAppToken: os.Getenv("FEISHU_BITABLE_APP_TOKEN"),
		},
		Fetch: FetchConfig{
			Timeout:       parseDuration(getEnv("FETCH_TIMEOUT", "15s"), 15*time.Second),
			UserAgent:     getEnv("FETCH_USER_AGENT", defaultUserAgent),
			RenderTimeout: parseDuration(getEnv("RENDER_TIMEOUT", "30s"), 30*time.Second),
		},
	}

	maxBytes, err := strconv.ParseInt(getEnv("FETCH_MAX_BYTES", "5242880"), 10, 64)
	if err != nil || maxBytes <= 0 {
		return nil, fmt.Errorf("invalid FETCH_MAX_BYTES value: %q", os.Getenv("FETCH_MAX_BYTES"))
	}
	cfg.Fetch.MaxBytes = maxBytes

	render, err := strconv.ParseBool(getEnv("RENDER_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid RENDER_ENABLED value: %w", err)
	}
	cfg.Fetch.RenderEnabled = render

	maxConns, err := strconv.ParseInt(getEnv("DATABASE_MAX_CONNS", "4"), 10, 32)
	if err != nil || maxConns <= 0 {
		return nil, fmt.Errorf("invalid DATABASE_MAX_CONNS value %q", os.Getenv("DATABASE_MAX_CONNS"))
	}
	cfg.DatabaseMaxConns = int32(maxConns)

	allowPrivate, err := strconv.ParseBool(getEnv("FETCH_ALLOW_PRIVATE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_ALLOW_PRIVATE value: %w", err)
	}
	cfg.Fetch.AllowPrivate = allowPrivate

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_EXTRACT", "30/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_EXTRACT value: %w", err)
	}
	cfg.RateLimitExtract = rl

	return cfg, nil
}

// HasEncKey reports whether a non-default sealing key was configured.
func (c *Config) HasEncKey() bool {
	return c.ConfigEncKey != "" && c.ConfigEncKey != defaultEncKey
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	if strings.EqualFold(strings.TrimSpace(value), "off") {
		return RateLimitConfig{}, nil
	}

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
