package store

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration, loaded from YAML with
// environment variable overrides for deploy-time values.
type Config struct {
	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Binance struct {
		BaseURL        string   `yaml:"base_url"`
		StreamURL      string   `yaml:"stream_url"`
		Symbols        []string `yaml:"symbols"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
	} `yaml:"binance"`

	Stream struct {
		ReconnectSeconds int `yaml:"reconnect_seconds"`
	} `yaml:"stream"`

	Indicators struct {
		EMAPeriods  []int `yaml:"ema_periods"`
		FibLookback int   `yaml:"fib_lookback"`
	} `yaml:"indicators"`

	LLM struct {
		Provider    string  `yaml:"provider"` // OPENAI or NOOP
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"llm"`

	Cache struct {
		RedisAddr  string `yaml:"redis_addr"` // empty disables the cache
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"cache"`

	Alert struct {
		ThresholdPct float64 `yaml:"threshold_pct"`
	} `yaml:"alert"`
}

// LoadConfig reads the YAML config, applies defaults and env overrides, and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Binance.BaseURL == "" {
		c.Binance.BaseURL = "https://api.binance.com/api/v3"
	}
	if c.Binance.StreamURL == "" {
		c.Binance.StreamURL = "wss://stream.binance.com:9443/stream"
	}
	if len(c.Binance.Symbols) == 0 {
		c.Binance.Symbols = []string{"BTCUSDT", "ETHUSDT"}
	}
	if c.Binance.TimeoutSeconds <= 0 {
		c.Binance.TimeoutSeconds = 15
	}
	if c.Stream.ReconnectSeconds <= 0 {
		c.Stream.ReconnectSeconds = 3
	}
	if len(c.Indicators.EMAPeriods) == 0 {
		c.Indicators.EMAPeriods = []int{9, 21, 50}
	}
	if c.Indicators.FibLookback <= 0 {
		c.Indicators.FibLookback = 12
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "OPENAI"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o"
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 800
	}
	if c.LLM.Temperature <= 0 {
		c.LLM.Temperature = 0.3
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = 60
	}
	if c.Alert.ThresholdPct <= 0 {
		c.Alert.ThresholdPct = 0.03
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MARKETLENS_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		c.Binance.BaseURL = v
	}
	if v := os.Getenv("BINANCE_STREAM_URL"); v != "" {
		c.Binance.StreamURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
}

func (c *Config) Validate() error {
	if c.LLM.Provider != "OPENAI" && c.LLM.Provider != "NOOP" {
		return fmt.Errorf("invalid llm provider %q: must be 'OPENAI' or 'NOOP'", c.LLM.Provider)
	}
	if c.LLM.Temperature > 1.0 {
		return fmt.Errorf("llm temperature %.2f out of range [0, 1]", c.LLM.Temperature)
	}
	if c.Alert.ThresholdPct >= 1.0 {
		return fmt.Errorf("alert threshold %.2f must be a fraction below 1", c.Alert.ThresholdPct)
	}
	for _, p := range c.Indicators.EMAPeriods {
		if p <= 0 {
			return fmt.Errorf("ema period %d must be positive", p)
		}
	}
	return nil
}

// HTTPTimeout returns the shared timeout for upstream HTTP calls.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Binance.TimeoutSeconds) * time.Second
}

// ReconnectDelay returns the fixed delay between stream reconnect attempts.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Stream.ReconnectSeconds) * time.Second
}

// CacheTTL returns the candle cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}
