// Package config loads application settings from the environment.
package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the application reads at startup.
type Config struct {
	Port    string
	Env     string
	Version string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret        string
	JWTExpirationDur time.Duration
}

var appConfig *Config

// Load reads the environment (after an optional .env file) and caches
// the result for Get.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment directly")
	}

	cfg := &Config{
		Port:    envOr("PORT", "8080"),
		Env:     envOr("ENV", "development"),
		Version: envOr("APP_VERSION", "dev"),

		DBHost:     envOr("DB_HOST", "localhost"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBUser:     envOr("DB_USER", "tally"),
		DBPassword: envOr("DB_PASSWORD", "tally"),
		DBName:     envOr("DB_NAME", "tally"),
		DBSSLMode:  envOr("DB_SSLMODE", "disable"),

		JWTSecret: envOr("JWT_SECRET", "fallback-secret-key-for-dev-only"),
	}

	raw := envOr("JWT_EXPIRES_IN", "24h")
	dur, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid JWT_EXPIRES_IN %q, using 24h", raw)
		dur = 24 * time.Hour
	}
	cfg.JWTExpirationDur = dur

	appConfig = cfg
	return cfg, nil
}

// Get returns the cached configuration, loading it on first use.
func Get() *Config {
	if appConfig == nil {
		cfg, err := Load()
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		appConfig = cfg
	}
	return appConfig
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
