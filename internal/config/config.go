package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the catalog tool
type Config struct {
	ServiceName string
	DBDriver    string
	DBDSN       string
	LogLevel    string
	SeedDemo    bool
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		ServiceName: getEnv("SERVICE_NAME", "catalog"),
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DBDSN:       getEnv("DB_DSN", "catalog.db"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		SeedDemo:    getEnvBool("SEED_DEMO", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
