package config

import (
	"log"
	"os"
	"time"
)

type Config struct {
	Port        string
	DatabaseDSN string
	Env         string

	AccessSecret  string
	RefreshSecret string

	CORSOrigin    string
	FlushInterval time.Duration
	UploadDir     string
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "ukonnect.db")
	cfg.Env = getEnv("APP_ENV", "development")
	cfg.AccessSecret = getEnv("JWT_ACCESS_SECRET", "dev-access-secret")
	cfg.RefreshSecret = getEnv("JWT_REFRESH_SECRET", "dev-refresh-secret")
	cfg.CORSOrigin = getEnv("CORS_ORIGIN", "http://localhost:5174")
	cfg.FlushInterval = getDuration("REMINDER_FLUSH_INTERVAL", 5*time.Minute)
	cfg.UploadDir = getEnv("UPLOAD_DIR", "uploads")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Printf("invalid duration for %s: %s", key, v)
			return def
		}
		return d
	}
	return def
}
