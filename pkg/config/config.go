package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/featureresolver/pkg/observability"
	"github.com/platinummonkey/featureresolver/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage storage.Config

	// Feature resolution defaults
	Features FeaturesConfig

	// Observability configuration
	Observability ObservabilityConfig

	// Redis-backed rate limiting (multi-instance deployments)
	Redis RedisConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// FeaturesConfig holds defaulting rules applied to requests that omit
// their own edition range.
type FeaturesConfig struct {
	DefaultMinEdition string
	DefaultMaxEdition string
}

// RedisConfig holds settings for the Redis-backed distributed rate limiter.
// When Enabled is false (the default), the server falls back to the
// in-memory limiter, which is correct for a single instance but does not
// share buckets across replicas.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Features:      loadFeaturesConfig(),
		Observability: loadObservabilityConfig(),
		Redis:         loadRedisConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("FEATURERESOLVER_HOST", "0.0.0.0"),
		Port:            getEnv("FEATURERESOLVER_PORT", "8080"),
		ReadTimeout:     getEnvDuration("FEATURERESOLVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("FEATURERESOLVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("FEATURERESOLVER_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("FEATURERESOLVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("FEATURERESOLVER_HEALTH_PORT", "9090"),
	}
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	if storageType := getEnv("FEATURERESOLVER_STORAGE_TYPE", ""); storageType != "" {
		cfg.Type = storageType
	}
	if fsRoot := getEnv("FEATURERESOLVER_FILESYSTEM_ROOT", ""); fsRoot != "" {
		cfg.FilesystemRoot = fsRoot
	}
	if pgURL := getEnv("FEATURERESOLVER_POSTGRES_URL", ""); pgURL != "" {
		cfg.PostgresURL = pgURL
	}
	if maxConns := getEnvInt("FEATURERESOLVER_POSTGRES_MAX_CONNS", 0); maxConns > 0 {
		cfg.PostgresMaxConns = maxConns
	}
	if minConns := getEnvInt("FEATURERESOLVER_POSTGRES_MIN_CONNS", 0); minConns > 0 {
		cfg.PostgresMinConns = minConns
	}
	if timeout := getEnvDuration("FEATURERESOLVER_POSTGRES_TIMEOUT", 0); timeout > 0 {
		cfg.PostgresTimeout = timeout
	}
	if cacheSize := getEnvInt("FEATURERESOLVER_CACHE_SIZE", 0); cacheSize > 0 {
		cfg.CacheSize = cacheSize
	}

	return cfg
}

// loadFeaturesConfig loads the edition-range defaulting rules from environment
func loadFeaturesConfig() FeaturesConfig {
	return FeaturesConfig{
		DefaultMinEdition: getEnv("FEATURERESOLVER_DEFAULT_MIN_EDITION", ""),
		DefaultMaxEdition: getEnv("FEATURERESOLVER_DEFAULT_MAX_EDITION", ""),
	}
}

// loadRedisConfig loads the distributed rate limiter's Redis settings from
// environment. Disabled unless FEATURERESOLVER_REDIS_ENABLED is set, since
// a single-instance deployment has no use for it.
func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  getEnvBool("FEATURERESOLVER_REDIS_ENABLED", false),
		Addr:     getEnv("FEATURERESOLVER_REDIS_ADDR", "localhost:6379"),
		Password: getEnv("FEATURERESOLVER_REDIS_PASSWORD", ""),
		DB:       getEnvInt("FEATURERESOLVER_REDIS_DB", 0),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("FEATURERESOLVER_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("FEATURERESOLVER_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("FEATURERESOLVER_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("FEATURERESOLVER_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("FEATURERESOLVER_OTEL_SERVICE_NAME", "feature-resolver"),
		OTelServiceVersion: getEnv("FEATURERESOLVER_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("FEATURERESOLVER_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Storage.Type {
	case "filesystem":
		if c.Storage.FilesystemRoot == "" {
			return fmt.Errorf("filesystem root is required for filesystem storage")
		}
	case "postgres":
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be filesystem or postgres)", c.Storage.Type)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
