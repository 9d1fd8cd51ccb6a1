package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Session
	JWTSecret     string
	SessionExpiry time.Duration
	CookieName    string
	CookieSecure  bool
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port:         getEnv("PORT", "8080"),
		JWTSecret:    getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		CookieName:   getEnv("SESSION_COOKIE_NAME", "session"),
		CookieSecure: getEnv("SESSION_COOKIE_SECURE", "false") == "true",
	}

	// Parse session expiry duration
	expStr := getEnv("SESSION_EXPIRES_IN", "168h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid SESSION_EXPIRES_IN value '%s', falling back to 168h\n", expStr)
		expDur = 7 * 24 * time.Hour
	}
	config.SessionExpiry = expDur

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
