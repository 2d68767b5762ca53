// Package config handles configuration loading for the auth service.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the auth service.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	PermissionCacheTTL   time.Duration
	PermissionCacheSweep time.Duration
	TokenSweepInterval   time.Duration

	RateLimitWindow time.Duration
	RateLimitMax    int
	LoginAttemptMax int

	AllowedOrigins []string
	Port           string
	Environment    string
	SwaggerHost    string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is merged in first when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return &Config{
		DBHost:     getEnvRequired("DB_HOST"),
		DBPort:     getEnvRequired("DB_PORT"),
		DBUser:     getEnvRequired("DB_USER"),
		DBPassword: getEnvRequired("DB_PASSWORD"),
		DBName:     getEnvRequired("DB_NAME"),

		RedisHost:     getEnvRequired("REDIS_HOST"),
		RedisPort:     getEnvRequired("REDIS_PORT"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		JWTAccessSecret:  getEnvRequired("JWT_ACCESS_SECRET"),
		JWTRefreshSecret: getEnvRequired("JWT_REFRESH_SECRET"),
		JWTAccessExpiry:  getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		JWTRefreshExpiry: getDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),

		PermissionCacheTTL:   getDuration("PERMISSION_CACHE_TTL", 5*time.Minute),
		PermissionCacheSweep: getDuration("PERMISSION_CACHE_SWEEP", time.Minute),
		TokenSweepInterval:   getDuration("TOKEN_SWEEP_INTERVAL", time.Hour),

		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		RateLimitMax:    getInt("RATE_LIMIT_MAX", 100),
		LoginAttemptMax: getInt("LOGIN_ATTEMPT_MAX", 10),

		AllowedOrigins: splitOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		Port:           getEnv("PORT", "8084"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		SwaggerHost:    getEnv("SWAGGER_HOST", ""),
	}
}

// DSN returns the Postgres connection string for the configured database.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// RedisAddr returns the host:port address of the configured Redis instance.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Required environment variable %s is not set", key)
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration for %s, using default: %v", key, err)
		return defaultValue
	}
	return duration
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s, using default: %v", key, err)
		return defaultValue
	}
	return parsed
}

func splitOrigins(value string) []string {
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
