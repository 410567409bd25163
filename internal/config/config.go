// Package config provides configuration for the ordering assistant.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the process configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Store settings
	StoreBackend    string // "sqlite" or "supabase"
	DatabaseURL     string
	SupabaseURL     string
	SupabaseKey     string
	StoreMaxRetries int

	// Reasoner settings
	ReasonerURL     string
	ReasonerAPIKey  string
	ReasonerModel   string
	ReasonerTimeout time.Duration

	// Payments
	MPAccessToken string
	MPWebhookURL  string

	// Conversation limits
	MaxTurns    int
	MaxMessages int

	// Fallback unit price applied when a hand-off returns an unpriced line.
	DefaultUnitPrice float64

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:         getEnvInt("HTTP_PORT", 8080),
		StoreBackend:     getEnv("STORE_BACKEND", "sqlite"),
		DatabaseURL:      getEnv("DATABASE_URL", "file:ordena.db?cache=shared&mode=rwc"),
		SupabaseURL:      getEnv("SUPABASE_URL", ""),
		SupabaseKey:      getEnv("SUPABASE_KEY", ""),
		StoreMaxRetries:  getEnvInt("STORE_MAX_RETRIES", 3),
		ReasonerURL:      getEnv("REASONER_URL", "http://localhost:4000"),
		ReasonerAPIKey:   getEnv("REASONER_API_KEY", ""),
		ReasonerModel:    getEnv("REASONER_MODEL", "gpt-4o-mini"),
		ReasonerTimeout:  time.Duration(getEnvInt("REASONER_TIMEOUT_MS", 300000)) * time.Millisecond,
		MPAccessToken:    getEnv("MP_ACCESS_TOKEN", ""),
		MPWebhookURL:     getEnv("MP_WEBHOOK_URL", ""),
		MaxTurns:         getEnvInt("MAX_TURNS", 15),
		MaxMessages:      getEnvInt("MAX_MESSAGES", 10),
		DefaultUnitPrice: getEnvFloat("DEFAULT_UNIT_PRICE", 10.0),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
