// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Env             string
	Port            string
	DatabaseURL     string
	AMQPURL         string
	InventoryAPIURL string
	ReportsDir      string
	RequestTimeout  time.Duration
	CacheLocation   *time.Location
}

// Load reads .env (when present) and then the process environment.
// The returned bool reports whether a .env file was loaded.
func Load() (*Config, bool, error) {
	loaded := godotenv.Load() == nil

	cfg := &Config{
		Env:             getenv("APP_ENV", "development"),
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AMQPURL:         os.Getenv("AMQP_URL"),
		InventoryAPIURL: os.Getenv("INVENTORY_API_URL"),
		ReportsDir:      getenv("REPORTS_DIR", "reportes"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = dsnFromParts()
	}

	timeout, err := time.ParseDuration(getenv("REQUEST_TIMEOUT", "10s"))
	if err != nil {
		return nil, loaded, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	cfg.RequestTimeout = timeout

	loc, err := time.LoadLocation(getenv("CACHE_TIMEZONE", "America/Lima"))
	if err != nil {
		return nil, loaded, fmt.Errorf("invalid CACHE_TIMEZONE: %w", err)
	}
	cfg.CacheLocation = loc

	return cfg, loaded, nil
}

func (c *Config) Production() bool {
	return c.Env == "production"
}

// dsnFromParts builds the DSN from DB_* variables, or returns "" when DB_HOST is unset.
func dsnFromParts() string {
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), host, getenv("DB_PORT", "5432"), os.Getenv("DB_NAME"),
	)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
