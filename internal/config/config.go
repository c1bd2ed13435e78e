package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Config stores all the configuration of the application.
// Values are loaded from environment variables with optional
// loading from a .env file via godotenv.
type Config struct {
	// Database settings
	DBDriver   string
	SQLitePath string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	// Redis settings
	RedisHost       string
	RedisPort       string
	RedisUsername   string
	RedisPassword   string
	HistoryCacheTTL time.Duration

	// Server settings
	ServerPort  string
	FrontendURL string
	GinMode     string
	LogLevel    string

	// Auth settings
	JWTSecret      string
	AccessTokenTTL time.Duration
}

// LoadConfig reads configuration from environment variables and .env file.
// It returns the loaded configuration, warnings about optional settings that
// are missing, or an error if required values are missing.
func LoadConfig() (*Config, []string, error) {
	var warnings []string

	// Try to load .env file, but proceed even if it doesn't exist
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			warnings = append(warnings, fmt.Sprintf("error loading .env file: %v", err))
		}
	}

	config := FromEnv()
	more, err := config.Validate()
	if err != nil {
		return nil, nil, err
	}
	return config, append(warnings, more...), nil
}

// FromEnv builds a Config from the current environment without validating it.
func FromEnv() *Config {
	return &Config{
		// Database settings
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		SQLitePath: getEnv("SQLITE_PATH", "chatbot.db"),
		DBHost:     getEnv("DB_HOST", ""),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", ""),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Redis settings
		RedisHost:       getEnv("REDIS_HOST", ""),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisUsername:   getEnv("REDIS_USERNAME", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		HistoryCacheTTL: getEnvAsMinutes("HISTORY_CACHE_TTL", 60),

		// Server settings
		ServerPort:  getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		GinMode:     getEnv("GIN_MODE", "release"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Auth settings
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AccessTokenTTL: getEnvAsMinutes("ACCESS_TOKEN_EXPIRE_MINUTES", 30),
	}
}

// Validate checks if the required configuration values are set and returns
// warnings for optional values that aren't set.
func (c *Config) Validate() ([]string, error) {
	var missingEnvs []string
	var warnings []string

	switch c.DBDriver {
	case "postgres":
		if c.DBHost == "" {
			missingEnvs = append(missingEnvs, "DB_HOST")
		}
		if c.DBUser == "" {
			missingEnvs = append(missingEnvs, "DB_USER")
		}
		if c.DBName == "" {
			missingEnvs = append(missingEnvs, "DB_NAME")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			missingEnvs = append(missingEnvs, "SQLITE_PATH")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q, expected postgres or sqlite", c.DBDriver)
	}

	// JWT secret is required
	if c.JWTSecret == "" {
		missingEnvs = append(missingEnvs, "JWT_SECRET")
	}

	// Return error if any required env vars are missing
	if len(missingEnvs) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missingEnvs, ", "))
	}

	if c.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}

	if c.HistoryCacheTTL <= 0 {
		return nil, fmt.Errorf("HISTORY_CACHE_TTL must be positive")
	}

	// gin.SetMode panics on anything else
	switch c.GinMode {
	case "", gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return nil, fmt.Errorf("unsupported GIN_MODE %q, expected debug, release or test", c.GinMode)
	}

	if !c.RedisEnabled() {
		warnings = append(warnings, "Redis configuration is incomplete, history caching will be disabled")
	}

	if c.FrontendURL == "" {
		warnings = append(warnings, "FRONTEND_URL is not set, CORS will allow all origins")
	}

	return warnings, nil
}

// RedisEnabled reports whether enough Redis settings are present to connect.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != "" && c.RedisPort != ""
}

// GetDSN returns the PostgreSQL data source name (connection string)
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// GetRedisAddr returns the Redis address in the format host:port
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// getEnv retrieves the value of the environment variable named by the key.
// If the variable is not present, the defaultValue is returned.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsMinutes reads a whole number of minutes. Missing or malformed
// values fall back to defaultMinutes.
func getEnvAsMinutes(key string, defaultMinutes int) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(value) * time.Minute
	}
	return time.Duration(defaultMinutes) * time.Minute
}
