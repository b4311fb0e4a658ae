package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{"HCV_STATE_DIR": "/tmp/hcv-test"}))
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, StoreSQLite, cfg.TokenStore)
	assert.Equal(t, filepath.Join("/tmp/hcv-test", "session.db"), cfg.DBPath)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.True(t, cfg.OpenBrowser)
	assert.Equal(t, DefaultEventsQueue, cfg.EventsQueue)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"NEXT_PUBLIC_API_URL": "https://api.example.org/",
		"HCV_STATE_DIR":       "/tmp/x",
		"HCV_TOKEN_STORE":     "Redis",
		"HCV_REDIS_DB":        "2",
		"HCV_HTTP_TIMEOUT":    "3s",
		"HCV_LOG_LEVEL":       "debug",
		"HCV_OPEN_BROWSER":    "false",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.org", cfg.APIURL)
	assert.Equal(t, StoreRedis, cfg.TokenStore)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.False(t, cfg.OpenBrowser)
}

func TestFromEnvPrefersHCVAPIURL(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"HCV_API_URL":         "http://primary",
		"NEXT_PUBLIC_API_URL": "http://secondary",
		"HCV_STATE_DIR":       "/tmp/x",
	}))
	require.NoError(t, err)
	assert.Equal(t, "http://primary", cfg.APIURL)
}

func TestFromEnvInvalid(t *testing.T) {
	tests := map[string]string{
		"HCV_TOKEN_STORE":  "etcd",
		"HCV_HTTP_TIMEOUT": "soon",
		"HCV_REDIS_DB":     "zero",
		"HCV_LOG_LEVEL":    "loud",
		"HCV_OPEN_BROWSER": "maybe",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := FromEnv(envMap(map[string]string{key: val, "HCV_STATE_DIR": "/tmp/x"}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestSetStateDir(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{"HCV_STATE_DIR": "/a"}))
	require.NoError(t, err)
	cfg.SetStateDir("/b")
	assert.Equal(t, filepath.Join("/b", "session.db"), cfg.DBPath)

	cfg, err = FromEnv(envMap(map[string]string{"HCV_STATE_DIR": "/a", "HCV_DB_PATH": "/pinned.db"}))
	require.NoError(t, err)
	cfg.SetStateDir("/b")
	assert.Equal(t, "/pinned.db", cfg.DBPath)
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "hcv.env")
	require.NoError(t, os.WriteFile(envFile, []byte("HCV_API_URL=http://from-file:9000\n"), 0o600))

	t.Setenv("HCV_ENV_FILE", envFile)
	t.Setenv("HCV_STATE_DIR", dir)
	t.Setenv("HCV_API_URL", "")
	require.NoError(t, os.Unsetenv("HCV_API_URL"))
	t.Cleanup(func() { os.Unsetenv("HCV_API_URL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://from-file:9000", cfg.APIURL)
}
