package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rolegate/rolegate/pkg/observability"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Server ServerConfig

	// Engine configuration
	Engine EngineConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration for the management API.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// EngineConfig holds role-engine configuration.
type EngineConfig struct {
	// AdminCacheTTL is how long chat administrator lists stay cached.
	AdminCacheTTL time.Duration

	// CacheSize bounds the per-chat membership caches.
	CacheSize int

	// SeedAdmins are principal ids added to the admins root at startup.
	SeedAdmins []int64
}

// ObservabilityConfig holds observability settings.
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Engine:        loadEngineConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment.
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("ROLEGATE_HOST", "0.0.0.0"),
		Port:            getEnv("ROLEGATE_PORT", "8080"),
		ReadTimeout:     getEnvDuration("ROLEGATE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("ROLEGATE_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("ROLEGATE_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("ROLEGATE_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// loadEngineConfig loads engine configuration from environment.
func loadEngineConfig() EngineConfig {
	return EngineConfig{
		AdminCacheTTL: getEnvDuration("ROLEGATE_ADMIN_CACHE_TTL", 30*time.Minute),
		CacheSize:     getEnvInt("ROLEGATE_CACHE_SIZE", 1024),
		SeedAdmins:    getEnvInt64Slice("ROLEGATE_ADMINS"),
	}
}

// loadObservabilityConfig loads observability configuration from environment.
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       observability.ParseLogLevel(getEnv("ROLEGATE_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("ROLEGATE_METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server port must be numeric: %q", c.Server.Port)
	}
	if c.Engine.AdminCacheTTL <= 0 {
		return fmt.Errorf("admin cache TTL must be positive")
	}
	if c.Engine.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	return nil
}

// Addr returns the listen address of the management API.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true"
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt64Slice parses a comma-separated list of integer ids.
func getEnvInt64Slice(key string) []int64 {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if parsed, err := strconv.ParseInt(part, 10, 64); err == nil {
			out = append(out, parsed)
		}
	}
	return out
}
