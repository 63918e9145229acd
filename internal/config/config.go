package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, loaded from the environment.
type Config struct {
	Port        string
	MetricsAddr string
	DatabaseURL string

	OpenWeatherAPIKey string

	JWTSecret string
	TokenTTL  time.Duration

	// FreshnessWindow is the maximum age for which a cached reading is
	// served without refetching.
	FreshnessWindow time.Duration

	// SweepInterval controls how often stale cache entries are pruned.
	SweepInterval time.Duration

	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		MetricsAddr:       getEnv("METRICS_ADDR", ":9090"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		OpenWeatherAPIKey: getEnv("OPENWEATHER_API_KEY", ""),
		JWTSecret:         getEnv("JWT_SECRET", "secret-key"),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:        getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", "admin123"),
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.FreshnessWindow, err = getDuration("FRESHNESS_WINDOW", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL", 10*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
