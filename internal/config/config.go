// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath      string
	SessionsPath      string
	ExportDir         string
	BaseURL           string
	LogFile           string
	LogLevel          string
	Projects          []Project
	FetchTimeout      time.Duration
	RetryDelay        time.Duration
	RetryAttempts     int
	RequestsPerSecond float64
	SafeWorkers       int
	TurboWorkers      int
	SummaryWorkers    int
}

// Default values
const (
	defaultBaseURL        = "https://venue.wifi.id"
	defaultFetchTimeout   = 60 * time.Second
	defaultRetryDelay     = time.Second
	defaultRetryAttempts  = 3
	defaultSafeWorkers    = 3
	defaultTurboWorkers   = 8
	defaultSummaryWorkers = 10
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	projects, err := ParseProjects(os.Getenv("PROJECTS"))
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		projects = DefaultProjects()
	}

	cfg := &Config{
		DatabasePath:      getEnvString("DATABASE_PATH", filepath.Join(getConfigDir(), "locations.db")),
		SessionsPath:      getEnvString("SESSIONS_PATH", filepath.Join(getConfigDir(), "sessions.json")),
		ExportDir:         getEnvString("EXPORT_DIR", "."),
		BaseURL:           getEnvString("VENUE_BASE_URL", defaultBaseURL),
		LogFile:           getEnvString("LOG_FILE", filepath.Join(getConfigDir(), "vud.log")),
		LogLevel:          getEnvString("LOG_LEVEL", "info"),
		Projects:          projects,
		FetchTimeout:      getEnvDuration("FETCH_TIMEOUT", defaultFetchTimeout),
		RetryDelay:        getEnvDuration("RETRY_DELAY", defaultRetryDelay),
		RetryAttempts:     getEnvInt("RETRY_ATTEMPTS", defaultRetryAttempts),
		RequestsPerSecond: getEnvFloat("REQUESTS_PER_SECOND", 0),
		SafeWorkers:       getEnvInt("SAFE_WORKERS", defaultSafeWorkers),
		TurboWorkers:      getEnvInt("TURBO_WORKERS", defaultTurboWorkers),
		SummaryWorkers:    getEnvInt("SUMMARY_WORKERS", defaultSummaryWorkers),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	// Ensure sessions directory exists
	if err := ensureDir(filepath.Dir(cfg.SessionsPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.RetryAttempts < 1 {
		return fmt.Errorf("RETRY_ATTEMPTS must be at least 1, got %d", c.RetryAttempts)
	}
	for name, n := range map[string]int{
		"SAFE_WORKERS":    c.SafeWorkers,
		"TURBO_WORKERS":   c.TurboWorkers,
		"SUMMARY_WORKERS": c.SummaryWorkers,
	} {
		if n < 1 {
			return fmt.Errorf("%s must be a positive integer, got %d", name, n)
		}
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("REQUESTS_PER_SECOND must not be negative")
	}
	return nil
}

// MaxWorkers returns the largest configured concurrency limit, used to size
// the shared connection pool.
func (c *Config) MaxWorkers() int {
	return max(c.SafeWorkers, c.TurboWorkers, c.SummaryWorkers)
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "venue-usage", ".env"),
			filepath.Join(home, ".venue-usage", ".env"),
		)
	}

	return paths
}

// getConfigDir returns the directory holding the database and sessions file.
func getConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "venue-usage")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
