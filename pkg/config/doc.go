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
//	FEATURERESOLVER_HOST="0.0.0.0"
//	FEATURERESOLVER_PORT="8080"
//	FEATURERESOLVER_HEALTH_PORT="9090"
//	FEATURERESOLVER_READ_TIMEOUT="15s"
//	FEATURERESOLVER_WRITE_TIMEOUT="15s"
//	FEATURERESOLVER_SHUTDOWN_TIMEOUT="30s"
//
// Storage settings:
//
//	FEATURERESOLVER_STORAGE_TYPE="postgres"  # filesystem, postgres
//	FEATURERESOLVER_FILESYSTEM_ROOT="/var/lib/featureresolver"
//	FEATURERESOLVER_POSTGRES_URL="postgres://localhost/featureresolver"
//	FEATURERESOLVER_POSTGRES_MAX_CONNS="20"
//	FEATURERESOLVER_POSTGRES_MIN_CONNS="2"
//	FEATURERESOLVER_CACHE_SIZE="256"
//
// Feature resolution defaults, applied when a compile/resolve/merge request
// omits its own edition bounds:
//
//	FEATURERESOLVER_DEFAULT_MIN_EDITION="2023"
//	FEATURERESOLVER_DEFAULT_MAX_EDITION="2024"
//
// Observability settings:
//
//	FEATURERESOLVER_LOG_LEVEL="info"  # debug, info, warn, error
//	FEATURERESOLVER_METRICS_ENABLED="true"
//	FEATURERESOLVER_OTEL_ENABLED="true"
//	FEATURERESOLVER_OTEL_ENDPOINT="otel-collector:4317"
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
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Storage: %s\n", cfg.Storage.Type)
//	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/observability: Uses observability configuration
//   - pkg/api: Uses Features configuration for edition-range defaulting
package config
