package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Match settings
	ConfirmationWindowSeconds int
	MinStakeAmount            int64

	// Settlement payees. These are deployment-specific identities, injected
	// here rather than compiled in, so test and production environments can
	// point the rake and royalty fallbacks at different accounts.
	PlatformPayeeID      string
	WhiteRoyaltyFallback string
	BlackRoyaltyFallback string

	// Privileged out-of-band stats corrector identity
	StatsAuthorityID string

	// Security
	JWTSecret         string
	SessionTimeoutMin int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/chessbets?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Match settings
		ConfirmationWindowSeconds: getEnvInt("CONFIRMATION_WINDOW_SECONDS", 10),
		MinStakeAmount:            getEnvInt64("MIN_STAKE_AMOUNT", 1000),

		// Settlement payees
		PlatformPayeeID:      getEnv("PLATFORM_PAYEE_ID", "platform"),
		WhiteRoyaltyFallback: getEnv("WHITE_ROYALTY_FALLBACK_ID", "royalty_white"),
		BlackRoyaltyFallback: getEnv("BLACK_ROYALTY_FALLBACK_ID", "royalty_black"),

		// Privileged stats corrector
		StatsAuthorityID: getEnv("STATS_AUTHORITY_ID", "stats_authority"),

		// Security
		JWTSecret:         getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTimeoutMin: getEnvInt("SESSION_TIMEOUT_MINUTES", 30),
	}
}

// ConfirmationWindow returns the escrow funding window as a duration.
func (c *Config) ConfirmationWindow() time.Duration {
	return time.Duration(c.ConfirmationWindowSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}
