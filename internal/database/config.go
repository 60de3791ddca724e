package database

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"tally/internal/logger"
)

// Config carries the Postgres connection settings.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewConfig reads connection settings from the environment, loading a
// .env file first when one exists.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Get().Debug("no .env file, using environment variables")
	}

	return &Config{
		Host:     envOr("DB_HOST", "localhost"),
		Port:     envOr("DB_PORT", "5432"),
		User:     envOr("DB_USER", "tally"),
		Password: envOr("DB_PASSWORD", "tally"),
		DBName:   envOr("DB_NAME", "tally"),
		SSLMode:  envOr("DB_SSLMODE", "disable"),
	}, nil
}

// DSN renders the keyword/value connection string for the GORM driver.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
