// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-kit/log"
	"github.com/joho/godotenv"

	swap "go-token-swap"
	"go-token-swap/feed"
)

// Config holds all app configuration
type Config struct {
	// Server
	HTTPPort string

	// Price feed
	FeedURL         string
	FeedTimeout     time.Duration
	RefreshInterval time.Duration

	// Swap session timing
	CalculationDebounce         time.Duration
	SwapDuration                time.Duration
	SuccessNotificationDuration time.Duration

	// Defaults for new sessions
	DefaultSlippage  string
	DefaultFromToken swap.Symbol
	DefaultToToken   swap.Symbol
	DefaultAmount    string
}

// Load reads configuration from environment variables, with an optional
// .env file. Every value has a default; a missing .env is not an error.
func Load(logger log.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		logger.Log("msg", "no .env file loaded", "err", err)
	}

	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		FeedURL:         getEnv("FEED_URL", feed.DefaultURL),
		FeedTimeout:     getEnvAsMillis("FEED_TIMEOUT_MS", 5000),
		RefreshInterval: getEnvAsMillis("REFRESH_INTERVAL_MS", 60000),

		CalculationDebounce:         getEnvAsMillis("CALCULATION_DEBOUNCE_MS", 200),
		SwapDuration:                getEnvAsMillis("SWAP_DURATION_MS", 2000),
		SuccessNotificationDuration: getEnvAsMillis("SUCCESS_NOTIFICATION_DURATION_MS", 5000),

		DefaultSlippage:  getEnv("DEFAULT_SLIPPAGE", "0.50"),
		DefaultFromToken: swap.Symbol(getEnv("DEFAULT_FROM_TOKEN", "ETH")),
		DefaultToToken:   swap.Symbol(getEnv("DEFAULT_TO_TOKEN", "BLUR")),
		DefaultAmount:    getEnv("DEFAULT_AMOUNT", "500"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsMillis gets an environment variable as a millisecond duration or
// returns a default value
func getEnvAsMillis(key string, defaultValue int) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return time.Duration(defaultValue) * time.Millisecond
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return time.Duration(defaultValue) * time.Millisecond
	}
	return time.Duration(parsed) * time.Millisecond
}
