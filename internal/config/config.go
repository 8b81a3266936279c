// Package config loads tenantchat settings from the environment and persists
// client state between invocations.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all configuration values.
type Config struct {
	// API
	APIURL        string
	ClientTimeout time.Duration
	DefaultDomain string

	// Persisted client state (cookies, last tenant)
	StateDir string

	// Logging
	LogFile     string
	LogLevel    slog.Level
	StderrLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		APIURL:        strings.TrimRight(getEnv("TENANTCHAT_API_URL", "http://localhost:8080/api"), "/"),
		ClientTimeout: parseDuration(getEnv("TENANTCHAT_CLIENT_TIMEOUT", ""), 60*time.Second),
		DefaultDomain: getEnv("TENANTCHAT_DOMAIN", ""),

		StateDir: getEnv("TENANTCHAT_STATE_DIR", defaultStateDir()),

		LogFile:     getEnv("TENANTCHAT_LOG_FILE", "/tmp/tenantchat.log"),
		LogLevel:    parseLogLevel(getEnv("TENANTCHAT_LOG_LEVEL", "INFO")),
		StderrLevel: parseLogLevel(getEnv("TENANTCHAT_STDERR_LOG_LEVEL", "WARN")),
	}
}

// StatePath is the file holding the persisted session.
func (c Config) StatePath() string {
	return filepath.Join(c.StateDir, "session.yaml")
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tenantchat"
	}
	return filepath.Join(home, ".tenantchat")
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
