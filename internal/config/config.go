package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr          string
	CORSOrigin    string
	SessionTTL    time.Duration
	ExportTimeout time.Duration
	ChromePath    string
	// Redis Configuration — empty means in-process session storage
	RedisURL string
}

func Load() Config {
	return Config{
		Addr:          getenv("API_ADDR", ":8690"),
		CORSOrigin:    getenv("BLUEPRINT_CORS_ORIGIN", "*"),
		SessionTTL:    time.Duration(getenvInt("BLUEPRINT_SESSION_TTL_SECONDS", 86400)) * time.Second,
		ExportTimeout: time.Duration(getenvInt("BLUEPRINT_EXPORT_TIMEOUT_SECONDS", 30)) * time.Second,
		ChromePath:    getenv("CHROME_PATH", ""),
		RedisURL:      getenv("REDIS_URL", ""),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
