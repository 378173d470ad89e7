package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// APIConfig holds HTTP server configuration settings
type APIConfig struct {
	Version          string
	Host             string
	Port             string
	AllowedOrigins   []string
	RateLimitEnabled bool
	RateLimitPerSec  float64
	LoggingEnabled   bool
	MaxRequestSize   int64
	RequestTimeout   time.Duration
}

// DefaultAPIConfig returns the API configuration from the environment
func DefaultAPIConfig() *APIConfig {
	return &APIConfig{
		Version:          "v1",
		Host:             getEnv("HOST", "0.0.0.0"),
		Port:             getEnv("PORT", "8080"),
		AllowedOrigins:   getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitEnabled: getEnvBool("API_RATE_LIMIT_ENABLED", true),
		RateLimitPerSec:  getEnvFloat("API_RATE_LIMIT_PER_SECOND", 5),
		LoggingEnabled:   getEnvBool("API_LOGGING_ENABLED", true),
		MaxRequestSize:   getEnvInt64("API_MAX_REQUEST_SIZE", 1024*1024), // 1MB
		RequestTimeout:   getEnvDuration("API_REQUEST_TIMEOUT", 60*time.Second),
	}
}

// Addr returns the listen address
func (c *APIConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
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

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
