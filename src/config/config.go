package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port         string
	DatabasePath string
	LogLevel     string
	SettingsPath string

	// Exchange-rate resolution
	ExchangeCacheTTL  time.Duration
	ExchangeCachePath string
	PreferredBase     string

	// How many recent store rows the reconciler inspects.
	RecentWindowSize int

	MaxImportSizeBytes int64
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	cacheTTLSecondsStr := getEnv("EXCHANGE_CACHE_TTL", "3600")
	cacheTTLSeconds, err := strconv.Atoi(cacheTTLSecondsStr)
	if err != nil || cacheTTLSeconds <= 0 {
		log.Printf("WARNING: Invalid EXCHANGE_CACHE_TTL '%s'. Using default 3600s. Error: %v", cacheTTLSecondsStr, err)
		cacheTTLSeconds = 3600
	}

	maxImportSizeBytesStr := getEnv("MAX_IMPORT_SIZE_BYTES", "10485760")
	maxImportSizeBytes, err := strconv.ParseInt(maxImportSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_IMPORT_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxImportSizeBytesStr, err)
		maxImportSizeBytes = 10 * 1024 * 1024
	}

	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./fintrack.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		SettingsPath: getEnv("SETTINGS_PATH", "data/settings.json"),

		ExchangeCacheTTL:  time.Duration(cacheTTLSeconds) * time.Second,
		ExchangeCachePath: getEnv("EXCHANGE_CACHE_PATH", "data/rates_cache.json"),
		PreferredBase:     getEnv("PREFERRED_BASE_CURRENCY", ""),

		RecentWindowSize: getEnvAsInt("RECENT_WINDOW_SIZE", 500),

		MaxImportSizeBytes: maxImportSizeBytes,
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, CachePath=%s, CacheTTL=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.ExchangeCachePath, Cfg.ExchangeCacheTTL)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}
