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

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// RedisConfig provides Redis connection settings shared by the cache and
// the audit task queue.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SearchConfig provides settings for the search/validation pipeline.
type SearchConfig interface {
	GetLookupTimeout() time.Duration
	GetPriceResponseTTL() time.Duration
	GetReferenceTTL() time.Duration
}

// AuditConfig provides settings for the audit task queue and worker.
type AuditConfig interface {
	RedisConfig
	GetAuditQueueName() string
	GetAuditConcurrency() int
	GetAuditRetention() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env              string
	HTTPAddr         string
	DatabaseURL      string
	RedisURL         string
	RedisTLSInsecure bool
	JWTAccessSecret  string
	CORSAllowAll     bool
	CORSOrigins      []string
	CORSAllowCreds   bool
	LookupTimeout    time.Duration
	PriceResponseTTL time.Duration
	ReferenceTTL     time.Duration
	AuditQueueName   string
	AuditConcurrency int
	AuditRetention   time.Duration
}

// Load reads configuration from the environment, optionally seeded from a
// .env file in development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		RedisTLSInsecure: getBool("REDIS_TLS_INSECURE", false),
		JWTAccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		CORSAllowAll:     getBool("CORS_ALLOW_ALL", false),
		CORSOrigins:      getList("CORS_ORIGINS"),
		CORSAllowCreds:   getBool("CORS_ALLOW_CREDENTIALS", true),
		LookupTimeout:    getDuration("SEARCH_LOOKUP_TIMEOUT", 3*time.Second),
		PriceResponseTTL: getDuration("SEARCH_PRICE_RESPONSE_TTL", 5*time.Minute),
		ReferenceTTL:     getDuration("SEARCH_REFERENCE_TTL", 1*time.Hour),
		AuditQueueName:   getEnv("AUDIT_QUEUE_NAME", "audit"),
		AuditConcurrency: getInt("AUDIT_CONCURRENCY", 10),
		AuditRetention:   getDuration("AUDIT_RETENTION", 90*24*time.Hour),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}

	return cfg, nil
}

// =============================================================================
// Interface implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string   { return c.DatabaseURL }
func (c *Config) GetRedisURL() string      { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetLookupTimeout() time.Duration    { return c.LookupTimeout }
func (c *Config) GetPriceResponseTTL() time.Duration { return c.PriceResponseTTL }
func (c *Config) GetReferenceTTL() time.Duration     { return c.ReferenceTTL }

func (c *Config) GetAuditQueueName() string         { return c.AuditQueueName }
func (c *Config) GetAuditConcurrency() int          { return c.AuditConcurrency }
func (c *Config) GetAuditRetention() time.Duration  { return c.AuditRetention }

// =============================================================================
// Env helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
