// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// LookupConfig provides settings for the address lookup client.
type LookupConfig interface {
	GetLookupBaseURL() string
	GetLookupTimeout() time.Duration
	GetLookupRateLimit() float64
	GetLookupRateBurst() int
}

// CacheConfig provides settings for the Redis lookup cache.
type CacheConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetLookupCacheTTL() time.Duration
	IsCacheEnabled() bool
}

// BinderConfig provides settings for the address group binder.
type BinderConfig interface {
	GetDebounceInterval() time.Duration
	GetConfirmTimeout() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env              string
	HTTPAddr         string
	CORSAllowAll     bool
	CORSOrigins      []string
	CORSAllowCreds   bool
	LookupBaseURL    string
	LookupTimeout    time.Duration
	LookupRateLimit  float64
	LookupRateBurst  int
	RedisAddr        string
	RedisPassword    string
	LookupCacheTTL   time.Duration
	DebounceInterval time.Duration
	ConfirmTimeout   time.Duration
}

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// LookupConfig implementation
func (c *Config) GetLookupBaseURL() string        { return c.LookupBaseURL }
func (c *Config) GetLookupTimeout() time.Duration { return c.LookupTimeout }
func (c *Config) GetLookupRateLimit() float64     { return c.LookupRateLimit }
func (c *Config) GetLookupRateBurst() int         { return c.LookupRateBurst }

// CacheConfig implementation
func (c *Config) GetRedisAddr() string              { return c.RedisAddr }
func (c *Config) GetRedisPassword() string          { return c.RedisPassword }
func (c *Config) GetLookupCacheTTL() time.Duration  { return c.LookupCacheTTL }
func (c *Config) IsCacheEnabled() bool              { return c.RedisAddr != "" }

// BinderConfig implementation
func (c *Config) GetDebounceInterval() time.Duration { return c.DebounceInterval }
func (c *Config) GetConfirmTimeout() time.Duration   { return c.ConfirmTimeout }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:     corsAllowAll,
		CORSOrigins:      corsOrigins,
		CORSAllowCreds:   strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		LookupBaseURL:    getEnv("LOOKUP_BASE_URL", "https://api.pdok.nl/bzk/locatieserver/search/v3_1"),
		LookupTimeout:    mustDuration(getEnv("LOOKUP_TIMEOUT", "10s")),
		LookupRateLimit:  mustFloat64(getEnv("LOOKUP_RATE_LIMIT", "5")),
		LookupRateBurst:  int(mustInt64(getEnv("LOOKUP_RATE_BURST", "10"))),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		LookupCacheTTL:   mustDuration(getEnv("LOOKUP_CACHE_TTL", "24h")),
		DebounceInterval: mustDuration(getEnv("DEBOUNCE_INTERVAL", "250ms")),
		ConfirmTimeout:   mustDuration(getEnv("CONFIRM_TIMEOUT", "2m")),
	}

	if cfg.LookupBaseURL == "" {
		return nil, fmt.Errorf("LOOKUP_BASE_URL is required")
	}
	if cfg.DebounceInterval <= 0 {
		return nil, fmt.Errorf("DEBOUNCE_INTERVAL must be a positive duration")
	}
	if cfg.LookupRateLimit <= 0 {
		return nil, fmt.Errorf("LOOKUP_RATE_LIMIT must be positive")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat64(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
