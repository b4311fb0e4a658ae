// Package config loads client settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Token store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Defaults.
const (
	DefaultAPIURL      = "http://localhost:8000"
	DefaultListenAddr  = "127.0.0.1:3000"
	DefaultHTTPTimeout = 15 * time.Second
	DefaultEventsQueue = "hcv.predictions"
)

// Config holds every setting the client reads at startup.
type Config struct {
	APIURL      string
	StateDir    string
	TokenStore  string
	DBPath      string
	ListenAddr  string
	HTTPTimeout time.Duration
	LogLevel    slog.Level
	OpenBrowser bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AMQPURL     string
	EventsQueue string
}

// Load reads .env files (missing files are ignored) and then the process
// environment. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	files := []string{".env"}
	if f := os.Getenv("HCV_ENV_FILE"); f != "" {
		files = append([]string{f}, files...)
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		APIURL:        firstNonEmpty(getenv("HCV_API_URL"), getenv("NEXT_PUBLIC_API_URL"), DefaultAPIURL),
		StateDir:      getenv("HCV_STATE_DIR"),
		TokenStore:    strings.ToLower(firstNonEmpty(getenv("HCV_TOKEN_STORE"), StoreSQLite)),
		DBPath:        getenv("HCV_DB_PATH"),
		ListenAddr:    firstNonEmpty(getenv("HCV_LISTEN_ADDR"), DefaultListenAddr),
		RedisAddr:     firstNonEmpty(getenv("HCV_REDIS_ADDR"), "localhost:6379"),
		RedisPassword: getenv("HCV_REDIS_PASSWORD"),
		AMQPURL:       getenv("HCV_AMQP_URL"),
		EventsQueue:   firstNonEmpty(getenv("HCV_EVENTS_QUEUE"), DefaultEventsQueue),
	}

	var err error
	if cfg.HTTPTimeout, err = parseDuration(getenv("HCV_HTTP_TIMEOUT"), DefaultHTTPTimeout); err != nil {
		return nil, fmt.Errorf("HCV_HTTP_TIMEOUT: %w", err)
	}
	if cfg.RedisDB, err = parseInt(getenv("HCV_REDIS_DB"), 0); err != nil {
		return nil, fmt.Errorf("HCV_REDIS_DB: %w", err)
	}
	if cfg.OpenBrowser, err = parseBool(getenv("HCV_OPEN_BROWSER"), true); err != nil {
		return nil, fmt.Errorf("HCV_OPEN_BROWSER: %w", err)
	}
	if cfg.LogLevel, err = ParseLevel(getenv("HCV_LOG_LEVEL")); err != nil {
		return nil, fmt.Errorf("HCV_LOG_LEVEL: %w", err)
	}

	switch cfg.TokenStore {
	case StoreSQLite, StoreRedis:
	default:
		return nil, fmt.Errorf("HCV_TOKEN_STORE: unknown store %q", cfg.TokenStore)
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.StateDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = os.TempDir()
		}
		cfg.StateDir = filepath.Join(dir, "hcv")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.StateDir, "session.db")
	}
	return cfg, nil
}

// SetStateDir moves the state directory, and the default database path
// with it unless HCV_DB_PATH pinned one.
func (c *Config) SetStateDir(dir string) {
	if c.DBPath == filepath.Join(c.StateDir, "session.db") {
		c.DBPath = filepath.Join(dir, "session.db")
	}
	c.StateDir = dir
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

func parseInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func parseBool(s string, def bool) (bool, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseBool(s)
}
