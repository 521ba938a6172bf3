// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the CLI and server need from the environment.
type Config struct {
	ListenAddr  string // WHEELCAST_LISTEN, default ":8080"
	PriceAPI    string // WHEELCAST_PRICE_API, empty disables the HTTP feed
	PriceKey    string // WHEELCAST_PRICE_KEY
	RefreshCron string // WHEELCAST_REFRESH_CRON, default "@every 15m"
	Verbosity   int    // WHEELCAST_VERBOSITY, 0=errors 1=info 2=debug 3=trace
}

// Load reads the .env file when present and assembles the config.
// Missing variables fall back to defaults; nothing here is fatal.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:  getenv("WHEELCAST_LISTEN", ":8080"),
		PriceAPI:    os.Getenv("WHEELCAST_PRICE_API"),
		PriceKey:    os.Getenv("WHEELCAST_PRICE_KEY"),
		RefreshCron: getenv("WHEELCAST_REFRESH_CRON", "@every 15m"),
		Verbosity:   1,
	}
	if v, err := strconv.Atoi(os.Getenv("WHEELCAST_VERBOSITY")); err == nil {
		cfg.Verbosity = v
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
