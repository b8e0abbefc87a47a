package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all client configuration.
type Config struct {
	API     APIConfig
	State   StateConfig
	Browser BrowserConfig
	Logging LoggingConfig
}

type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables the throttle
	RateBurst int
}

type StateConfig struct {
	Path string
}

type BrowserConfig struct {
	PageSize          int
	SearchDebounce    time.Duration
	CatalogSnapshot   int
	LowStockThreshold int
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads an optional .env file and then the environment.
func Load() *Config {
	// .env is optional for a CLI; the environment alone is enough.
	_ = godotenv.Load()

	return &Config{
		API: APIConfig{
			BaseURL:   getEnv("STOCKDESK_API_BASE", "http://localhost:8080/api"),
			Timeout:   parseDuration(getEnv("STOCKDESK_API_TIMEOUT", "15s"), 15*time.Second),
			RateLimit: parseFloat(getEnv("STOCKDESK_RATE_LIMIT", "10"), 10),
			RateBurst: parseInt(getEnv("STOCKDESK_RATE_BURST", "5"), 5),
		},
		State: StateConfig{
			Path: getEnv("STOCKDESK_STATE_FILE", defaultStatePath()),
		},
		Browser: BrowserConfig{
			PageSize:          parseInt(getEnv("STOCKDESK_PAGE_SIZE", "10"), 10),
			SearchDebounce:    parseDuration(getEnv("STOCKDESK_SEARCH_DEBOUNCE", "350ms"), 350*time.Millisecond),
			CatalogSnapshot:   parseInt(getEnv("STOCKDESK_CATALOG_SNAPSHOT", "999"), 999),
			LowStockThreshold: parseInt(getEnv("STOCKDESK_LOW_STOCK_THRESHOLD", "5"), 5),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// NewLogger builds the process logger from the logging section.
func (c *Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(c.Logging.Level); err == nil {
		log.SetLevel(level)
	}
	if c.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return log
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stockdesk.yaml"
	}
	return filepath.Join(home, ".stockdesk", "state.yaml")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, defaultValue int) int {
	if i, err := strconv.Atoi(s); err == nil && i > 0 {
		return i
	}
	return defaultValue
}

func parseFloat(s string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return f
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	// A bare number is milliseconds.
	if i, err := strconv.Atoi(s); err == nil {
		return time.Duration(i) * time.Millisecond
	}
	return defaultValue
}
