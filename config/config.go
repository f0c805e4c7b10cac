package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Browser BrowserConfig
	Engine  EngineConfig
	Session SessionConfig
	Log     LogConfig

	// PresetsFile overrides the embedded quick-selector presets.
	PresetsFile string
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8501
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the per-call browser launches.
type BrowserConfig struct {
	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the proxy URL used by every strategy.
	DefaultProxy string
}

// EngineConfig controls fetch behaviour shared by the strategies.
type EngineConfig struct {
	// MaxBodyBytes caps the HTTP response body read by the Fetcher strategy.
	MaxBodyBytes int64 // default: 10 MiB

	// CloudflareTimeout bounds how long StealthyFetcher waits for a
	// challenge to clear when solve_cloudflare is set.
	CloudflareTimeout time.Duration // default: 60s

	// IdleWait is the quiet window that counts as network idle.
	IdleWait time.Duration // default: 500ms
}

// SessionConfig controls the UI-owned session state.
type SessionConfig struct {
	// MaxSessions is the maximum number of live sessions.
	MaxSessions int // default: 1000

	// TTL evicts sessions not seen for this long.
	TTL time.Duration // default: 1h

	// HistorySize caps the per-session job history.
	HistorySize int // default: 20
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"

	// File, when set, also writes logs to a rotating file.
	File string
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SCRAPEUI_HOST", "0.0.0.0"),
			Port: envIntOr("SCRAPEUI_PORT", 8501),
			Mode: envOr("SCRAPEUI_MODE", "release"),
		},
		Browser: BrowserConfig{
			NoSandbox:    envBoolOr("SCRAPEUI_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("SCRAPEUI_BROWSER_BIN"),
			DefaultProxy: os.Getenv("SCRAPEUI_PROXY"),
		},
		Engine: EngineConfig{
			MaxBodyBytes:      int64(envIntOr("SCRAPEUI_MAX_BODY_BYTES", 10<<20)),
			CloudflareTimeout: envDurationOr("SCRAPEUI_CLOUDFLARE_TIMEOUT", 60*time.Second),
			IdleWait:          envDurationOr("SCRAPEUI_IDLE_WAIT", 500*time.Millisecond),
		},
		Session: SessionConfig{
			MaxSessions: envIntOr("SCRAPEUI_MAX_SESSIONS", 1000),
			TTL:         envDurationOr("SCRAPEUI_SESSION_TTL", time.Hour),
			HistorySize: envIntOr("SCRAPEUI_HISTORY_SIZE", 20),
		},
		Log: LogConfig{
			Level:  envOr("SCRAPEUI_LOG_LEVEL", "info"),
			Format: envOr("SCRAPEUI_LOG_FORMAT", "json"),
			File:   os.Getenv("SCRAPEUI_LOG_FILE"),
		},
		PresetsFile: os.Getenv("SCRAPEUI_PRESETS_FILE"),
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
