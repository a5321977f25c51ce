package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Trading modes.
const (
	ModeLive = "LIVE" // orders go to the backend
	ModeMock = "MOCK" // orders are filled in memory
)

// Reconnect policies for the realtime feed.
const (
	BackoffFixed       = "fixed"
	BackoffExponential = "exponential"
)

// Config holds every application setting.
// LoadConfig reads it from yaml, then lets PICKCOIN_* environment
// variables override the sensitive or deployment-specific values.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Trading struct {
		Mode   string `yaml:"mode"`
		UserID string `yaml:"user_id"`
	} `yaml:"trading"`

	API struct {
		BaseURL         string `yaml:"base_url"`
		WSURL           string `yaml:"ws_url"`
		TimeoutSec      int    `yaml:"timeout_sec"`
		RateLimitPerSec int    `yaml:"rate_limit_per_sec"`
		CoinSyncWorkers int    `yaml:"coin_sync_workers"`
	} `yaml:"api"`

	Market struct {
		Symbols  []string `yaml:"symbols"`  // coins, e.g. BTC
		Selected string   `yaml:"selected"` // coin whose book is shown
	} `yaml:"market"`

	Realtime struct {
		PingIntervalMS   int    `yaml:"ping_interval_ms"`
		ReconnectDelayMS int    `yaml:"reconnect_delay_ms"`
		Backoff          string `yaml:"backoff"`
		ReadTimeoutSec   int    `yaml:"read_timeout_sec"`
	} `yaml:"realtime"`

	OrderBook struct {
		PollIntervalMS int `yaml:"poll_interval_ms"`
	} `yaml:"orderbook"`

	Chart struct {
		IntervalSec    int   `yaml:"interval_sec"`
		HistoryCandles int   `yaml:"history_candles"`
		Seed           int64 `yaml:"seed"`
	} `yaml:"chart"`

	UI struct {
		UpdateIntervalMS int  `yaml:"update_interval_ms"`
		Color            bool `yaml:"color"`
	} `yaml:"ui"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Channel  string `yaml:"channel"`
	} `yaml:"redis"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Missing files are skipped; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes yaml, applies defaults and env overrides, then validates.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = AppName
	}
	if cfg.Trading.Mode == "" {
		cfg.Trading.Mode = ModeMock
	}
	cfg.Trading.Mode = strings.ToUpper(cfg.Trading.Mode)
	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = 10
	}
	if cfg.API.RateLimitPerSec <= 0 {
		cfg.API.RateLimitPerSec = 10
	}
	if cfg.API.CoinSyncWorkers <= 0 {
		cfg.API.CoinSyncWorkers = 4
	}
	if cfg.Market.Selected == "" && len(cfg.Market.Symbols) > 0 {
		cfg.Market.Selected = cfg.Market.Symbols[0]
	}
	if cfg.Realtime.PingIntervalMS <= 0 {
		cfg.Realtime.PingIntervalMS = 30000
	}
	if cfg.Realtime.ReconnectDelayMS <= 0 {
		cfg.Realtime.ReconnectDelayMS = 3000
	}
	if cfg.Realtime.Backoff == "" {
		cfg.Realtime.Backoff = BackoffFixed
	}
	if cfg.Realtime.ReadTimeoutSec <= 0 {
		cfg.Realtime.ReadTimeoutSec = 60
	}
	if cfg.OrderBook.PollIntervalMS <= 0 {
		cfg.OrderBook.PollIntervalMS = 3000
	}
	if cfg.Chart.IntervalSec <= 0 {
		cfg.Chart.IntervalSec = 60
	}
	if cfg.Chart.HistoryCandles <= 0 {
		cfg.Chart.HistoryCandles = 200
	}
	if cfg.UI.UpdateIntervalMS <= 0 {
		cfg.UI.UpdateIntervalMS = 250
	}
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "pickcoin:ticker"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if !hasPrefix(c.API.BaseURL, "http://") && !hasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("invalid API base URL: %q", c.API.BaseURL)
	}
	if !hasPrefix(c.API.WSURL, "ws://") && !hasPrefix(c.API.WSURL, "wss://") {
		return fmt.Errorf("invalid realtime WS URL: %q", c.API.WSURL)
	}
	if len(c.Market.Symbols) == 0 {
		return fmt.Errorf("at least one market symbol is required")
	}

	switch c.Trading.Mode {
	case ModeLive:
		if c.Trading.UserID == "" {
			return fmt.Errorf("trading.user_id is required in %s mode", ModeLive)
		}
	case ModeMock:
	default:
		return fmt.Errorf("unknown trading mode: %s", c.Trading.Mode)
	}

	switch c.Realtime.Backoff {
	case BackoffFixed, BackoffExponential:
	default:
		return fmt.Errorf("unknown backoff policy: %s", c.Realtime.Backoff)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s", c.Logging.Format)
	}

	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv overwrites settings with PICKCOIN_* variables when set.
// Environment variables take precedence over the config file.
func overrideWithEnv(cfg *Config) {
	if cfg.Redis.Password != "" {
		// Using fmt instead of slog: the logger is built from this config.
		fmt.Println("⚠️  SECURITY WARNING: redis password found in config file.")
		fmt.Println("   Recommendation: use PICKCOIN_REDIS_PASSWORD instead.")
	}

	if v := os.Getenv("PICKCOIN_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("PICKCOIN_WS_URL"); v != "" {
		cfg.API.WSURL = v
	}
	if v := os.Getenv("PICKCOIN_TRADING_MODE"); v != "" {
		cfg.Trading.Mode = strings.ToUpper(v)
	}
	if v := os.Getenv("PICKCOIN_USER_ID"); v != "" {
		cfg.Trading.UserID = v
	}
	if v := os.Getenv("PICKCOIN_SELECTED"); v != "" {
		cfg.Market.Selected = strings.ToUpper(v)
	}
	if v := os.Getenv("PICKCOIN_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("PICKCOIN_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("PICKCOIN_REDIS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Redis.Enabled = b
		}
	}
	if v := os.Getenv("PICKCOIN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
