package main

import (
	"os"
	"strconv"
	"time"
)

// Config holds all server settings, read from the environment.
type Config struct {
	Addr            string
	DatabaseURL     string
	InitSchema      bool
	ShutdownTimeout time.Duration
}

// LoadConfig reads the configuration from environment variables, falling
// back to defaults suitable for local development.
func LoadConfig() *Config {
	return &Config{
		Addr:            getEnv("EXCHANGE_ADDR", ":8080"),
		DatabaseURL:     getEnv("EXCHANGE_DATABASE_URL", ""),
		InitSchema:      getEnvBool("EXCHANGE_DB_INIT", false),
		ShutdownTimeout: getEnvDuration("EXCHANGE_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
