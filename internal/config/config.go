package config

import (
	"fmt"
	"os"
	"strconv"
)

// Store backends selectable via STORE_BACKEND.
const (
	StoreBackendFile  = "file"
	StoreBackendRedis = "redis"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	FrontendURL     string
	StoreBackend    string
	StorePath       string
	RedisURL        string
	RatelimitRate   string
	RetentionDays   int
	CleanupInterval int // minutes between retention sweeps
	EnableHSTS      bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		StoreBackend:    getEnv("STORE_BACKEND", StoreBackendFile),
		StorePath:       getEnv("STORE_PATH", "taskify.json"),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RatelimitRate:   getEnv("RATELIMIT_RATE", ""),
		RetentionDays:   getEnvInt("RETENTION_DAYS", 10),
		CleanupInterval: getEnvInt("CLEANUP_INTERVAL_MINUTES", 60),
		EnableHSTS:      getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	switch cfg.StoreBackend {
	case StoreBackendFile, StoreBackendRedis:
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q", StoreBackendFile, StoreBackendRedis)
	}

	if cfg.RetentionDays <= 0 {
		return nil, fmt.Errorf("RETENTION_DAYS must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
