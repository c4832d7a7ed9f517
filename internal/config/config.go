// Package config provides configuration management for the club leaderboard service.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Strava   StravaConfig
	Sync     SyncConfig
	Cache    CacheConfig
	Logging  LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// StravaConfig holds external API credentials and request pacing
type StravaConfig struct {
	ClientID       string
	ClientSecret   string
	RequestTimeout time.Duration
	// CourtesyDelay is inserted between consecutive page/segment fetches
	// even when the API has not returned a 429.
	CourtesyDelay time.Duration
}

// SyncConfig holds sync pipeline configuration
type SyncConfig struct {
	// WindowStart/WindowEnd bound the historical date window the pipeline ingests
	WindowStart time.Time
	WindowEnd   time.Time
	// MaxActivityPages caps activity history pagination (default: 10 pages of 100)
	MaxActivityPages int
	// MaxCrownPages caps achievement pagination (default: 5 pages of 100)
	MaxCrownPages int
	PageSize      int
}

// CacheConfig holds read-path cache configuration
type CacheConfig struct {
	TTL time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// Load .env file (optional in production)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	windowStart, err := getEnvAsDate("SYNC_WINDOW_START", "2008-01-01")
	if err != nil {
		return nil, err
	}
	windowEnd, err := getEnvAsDate("SYNC_WINDOW_END", "2020-01-01")
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "club_leaderboard"),
				User:           getEnv("POSTGRES_USER", "leaderboard"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 50),
			},
			Redis: RedisConfig{
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 20),
			},
		},
		Strava: StravaConfig{
			ClientID:       getEnv("STRAVA_CLIENT_ID", ""),
			ClientSecret:   getEnv("STRAVA_CLIENT_SECRET", ""),
			RequestTimeout: getEnvAsDuration("STRAVA_REQUEST_TIMEOUT", 30*time.Second),
			CourtesyDelay:  getEnvAsDuration("STRAVA_COURTESY_DELAY", 100*time.Millisecond),
		},
		Sync: SyncConfig{
			WindowStart:      windowStart,
			WindowEnd:        windowEnd,
			MaxActivityPages: getEnvAsInt("SYNC_MAX_ACTIVITY_PAGES", 10),
			MaxCrownPages:    getEnvAsInt("SYNC_MAX_CROWN_PAGES", 5),
			PageSize:         getEnvAsInt("SYNC_PAGE_SIZE", 100),
		},
		Cache: CacheConfig{
			TTL: getEnvAsDuration("CACHE_TTL", time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDate gets an environment variable as a UTC date (2006-01-02)
func getEnvAsDate(key, defaultValue string) (time.Time, error) {
	valueStr := getEnv(key, defaultValue)
	value, err := time.ParseInLocation("2006-01-02", valueStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date for %s: %w", key, err)
	}
	return value, nil
}
