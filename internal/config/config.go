// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"helpdesk-service/internal/pkg/jwt"
)

type AppConfig struct {
	// Server
	HTTPAddr      string
	AllowedOrigin string

	// Redis
	RedisAddr string
	RedisPass string
	RedisDB   int

	// JWT
	JWT jwt.Config

	// Refresh sessions
	RefreshTTL time.Duration

	// Cookies
	CookieDomain string
	CookieSecure bool
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8000"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", ""),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		JWT: jwt.Config{
			PrivPath: getEnv("JWT_PRIVATE_KEY_PATH", "/app/secrets/jwt_private.pem"),
			PubPath:  getEnv("JWT_PUBLIC_KEY_PATH", "/app/secrets/jwt_public.pem"),
			Issuer:   getEnv("JWT_ISSUER", "helpdesk"),
			Audience: getEnv("JWT_AUDIENCE", "helpdesk-clients"),
			TTL:      getEnvDuration("ACCESS_TOKEN_TTL", time.Hour),
			KID:      getEnv("JWT_KID", "helpdesk-key"),
		},

		RefreshTTL: getEnvDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),

		CookieDomain: getEnv("COOKIE_DOMAIN", ""),
		CookieSecure: getEnv("COOKIE_SECURE", "true") == "true",
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
