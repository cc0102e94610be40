package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "https://api.binance.com/api/v3", cfg.Binance.BaseURL)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, cfg.Binance.Symbols)
	assert.Equal(t, 3*time.Second, cfg.ReconnectDelay())
	assert.Equal(t, []int{9, 21, 50}, cfg.Indicators.EMAPeriods)
	assert.Equal(t, 12, cfg.Indicators.FibLookback)
	assert.Equal(t, "OPENAI", cfg.LLM.Provider)
	assert.Equal(t, float32(0.3), cfg.LLM.Temperature)
	assert.Equal(t, 0.03, cfg.Alert.ThresholdPct)
	assert.Empty(t, cfg.Cache.RedisAddr, "cache disabled unless configured")
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
binance:
  symbols: [BTCUSDT]
  timeout_seconds: 5
stream:
  reconnect_seconds: 1
llm:
  provider: NOOP
cache:
  redis_addr: "localhost:6379"
  ttl_seconds: 30
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"BTCUSDT"}, cfg.Binance.Symbols)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, time.Second, cfg.ReconnectDelay())
	assert.Equal(t, "NOOP", cfg.LLM.Provider)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("MARKETLENS_ADDR", ":7070")
	t.Setenv("BINANCE_BASE_URL", "http://localhost:9000")
	t.Setenv("LLM_PROVIDER", "NOOP")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:9000", cfg.Binance.BaseURL)
	assert.Equal(t, "NOOP", cfg.LLM.Provider)
	assert.Equal(t, "redis:6379", cfg.Cache.RedisAddr)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"unknown provider", "llm:\n  provider: GEMINI\n"},
		{"temperature out of range", "llm:\n  temperature: 1.5\n"},
		{"alert threshold not a fraction", "alert:\n  threshold_pct: 1.5\n"},
		{"non-positive ema period", "indicators:\n  ema_periods: [9, -1]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}
