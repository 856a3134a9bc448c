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

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// Document analyzer (Gemini) configuration
	Analyzer AnalyzerConfig

	// Verification flow configuration
	Verification VerificationConfig

	// Upload rate limiting configuration
	RateLimit RateLimitConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// AnalyzerConfig holds document analyzer configuration.
// Mode "dev" uses the deterministic mock analyzer; "production" requires a
// Gemini API key and calls the real service.
type AnalyzerConfig struct {
	Mode    string // "dev" or "production"
	APIKey  string
	Model   string
	Timeout time.Duration
}

// VerificationConfig holds verification flow configuration
type VerificationConfig struct {
	// ConfidenceThreshold is the minimum analyzer confidence for a valid
	// judgement to be accepted. Applied by the state machine, not the client.
	ConfidenceThreshold float64

	// MaxAttempts caps failed uploads per verification stage.
	MaxAttempts int
}

// RateLimitConfig holds upload rate limiting configuration
type RateLimitConfig struct {
	MaxUserUploads int           // max document uploads per user
	UserWindow     time.Duration // time window for the per-user limit
	MaxIPUploads   int           // max document uploads per IP
	IPWindow       time.Duration // time window for the per-IP limit
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 86400)) * time.Second,
		},
		Analyzer: AnalyzerConfig{
			Mode:    getEnv("ANALYZER_MODE", "dev"), // "dev" or "production"
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
			Timeout: time.Duration(getEnvAsInt("GEMINI_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Verification: VerificationConfig{
			ConfidenceThreshold: getEnvAsFloat("VERIFICATION_CONFIDENCE_THRESHOLD", 0.6),
			MaxAttempts:         getEnvAsInt("VERIFICATION_MAX_ATTEMPTS", 5),
		},
		RateLimit: RateLimitConfig{
			MaxUserUploads: getEnvAsInt("UPLOAD_RATE_LIMIT_USER", 10),
			UserWindow:     time.Duration(getEnvAsInt("UPLOAD_RATE_WINDOW_USER_MINUTES", 10)) * time.Minute,
			MaxIPUploads:   getEnvAsInt("UPLOAD_RATE_LIMIT_IP", 30),
			IPWindow:       time.Duration(getEnvAsInt("UPLOAD_RATE_WINDOW_IP_MINUTES", 60)) * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Analyzer.Mode != "dev" && c.Analyzer.Mode != "production" {
		return fmt.Errorf("invalid analyzer mode: %s (must be 'dev' or 'production')", c.Analyzer.Mode)
	}

	if c.Analyzer.Mode == "production" && c.Analyzer.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required in production analyzer mode")
	}

	if c.Verification.ConfidenceThreshold < 0 || c.Verification.ConfidenceThreshold > 1 {
		return fmt.Errorf("VERIFICATION_CONFIDENCE_THRESHOLD must be in [0, 1]")
	}

	if c.Verification.MaxAttempts < 1 {
		return fmt.Errorf("VERIFICATION_MAX_ATTEMPTS must be at least 1")
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid float value for %s, using default: %g", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
