// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	ROLEGATE_HOST="0.0.0.0"
//	ROLEGATE_PORT="8080"
//	ROLEGATE_READ_TIMEOUT="15s"
//	ROLEGATE_WRITE_TIMEOUT="15s"
//	ROLEGATE_IDLE_TIMEOUT="60s"
//	ROLEGATE_SHUTDOWN_TIMEOUT="30s"
//
// Engine settings:
//
//	ROLEGATE_ADMIN_CACHE_TTL="30m"
//	ROLEGATE_CACHE_SIZE="1024"
//	ROLEGATE_ADMINS="1001,1002"  # principal ids seeded into the admins root
//
// Observability settings:
//
//	ROLEGATE_LOG_LEVEL="info"  # debug, info, warn, error
//	ROLEGATE_METRICS_ENABLED="true"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s\n", cfg.Addr())
//	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/roles: Uses engine configuration
//   - pkg/observability: Uses observability configuration
package config
