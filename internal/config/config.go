// Package config loads client configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values.
type Config struct {
	// Backend
	APIURL        string
	ClientTimeout time.Duration

	// Local state
	ProfileFile string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Notifications
	NotifyDuration time.Duration
}

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first; variables already
// set in the environment win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIURL:        strings.TrimRight(getEnv("CRE_API_URL", "http://localhost:8000"), "/"),
		ClientTimeout: parseDuration(getEnv("CRE_CLIENT_TIMEOUT", ""), 60*time.Second),

		ProfileFile: getEnv("CRE_PROFILE_FILE", defaultProfileFile()),

		LogFile:  getEnv("CRE_LOG_FILE", filepath.Join(os.TempDir(), "creassist.log")),
		LogLevel: parseLogLevel(getEnv("CRE_LOG_LEVEL", "ERROR")),

		NotifyDuration: parseDuration(getEnv("CRE_NOTIFY_DURATION", ""), 5*time.Second),
	}
}

func defaultProfileFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "creassist", "profile.yaml")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
