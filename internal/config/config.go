// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration resolved from the
// environment. User-editable settings (token, poll interval) live in the
// settings file managed by Store, not here.
type Config struct {
	SettingsPath string
	LogPath      string
	LogLevel     string
	HTTPTimeout  time.Duration
}

// Default values
const (
	defaultHTTPTimeout = 30 * time.Second
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

	cfg := &Config{
		SettingsPath: getEnvString("CCUSAGE_SETTINGS_PATH", getDefaultSettingsPath()),
		LogPath:      getEnvString("CCUSAGE_LOG_PATH", getDefaultLogPath()),
		LogLevel:     getEnvString("CCUSAGE_LOG_LEVEL", "info"),
		HTTPTimeout:  getEnvDuration("CCUSAGE_HTTP_TIMEOUT", defaultHTTPTimeout),
	}

	// Ensure settings directory exists
	if err := ensureDir(filepath.Dir(cfg.SettingsPath)); err != nil {
		return nil, err
	}

	// Ensure log directory exists
	if err := ensureDir(filepath.Dir(cfg.LogPath)); err != nil {
		return nil, err
	}

	return cfg, nil
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
			filepath.Join(home, ".config", "claude-code-usage", ".env"),
			filepath.Join(home, ".claude-code-usage", ".env"),
		)
	}

	return paths
}

// getDefaultSettingsPath returns the default path for the settings JSON file.
func getDefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "settings.json"
	}
	return filepath.Join(home, ".config", "claude-code-usage", "settings.json")
}

// getDefaultLogPath returns the default path for the log file.
func getDefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "claude-code-usage.log"
	}
	return filepath.Join(home, ".config", "claude-code-usage", "claude-code-usage.log")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
