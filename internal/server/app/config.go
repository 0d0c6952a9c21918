package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/grapelabs/grape/pkg/jwtx"
)

type Config struct {
	JWTSecret string        // Required: HMAC secret for bearer tokens (min 32 bytes)
	Issuer    string        // Optional: issuer claim for tokens (default: grape)
	TokenTTL  time.Duration // Optional: bearer token and cookie lifetime (default: 7 days)

	DatabaseFile string   // Optional: path to SQLite database file (default: ./grape.db)
	PepperFile   string   // Optional: path to the password-hash pepper file (default: ./pepper)
	CORSOrigins  []string // Optional: allowed browser origins

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 3000)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		JWTSecret:           os.Getenv("JWT_SECRET"),
		Issuer:              getEnvOrDefault("AUTH_ISSUER", "grape"),
		TokenTTL:            getEnvDurationOrDefault("TOKEN_TTL", jwtx.DefaultTokenTTL),
		DatabaseFile:        getEnvOrDefault("DATABASE_FILE", "grape.db"),
		PepperFile:          getEnvOrDefault("PEPPER_FILE", "pepper"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 3000),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
