package infra

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalConfig = `
api:
  base_url: "http://localhost:8080"
  ws_url: "ws://localhost:8080/api/realtime"
market:
  symbols: ["BTC", "ETH"]
`

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(minimalConfig))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	if cfg.Market.Selected != "BTC" {
		t.Errorf("Selected should default to the first symbol, got %q", cfg.Market.Selected)
	}
	if cfg.Trading.Mode != ModeMock {
		t.Errorf("Mode = %q; want %q", cfg.Trading.Mode, ModeMock)
	}
	if cfg.Realtime.PingIntervalMS != 30000 || cfg.Realtime.ReconnectDelayMS != 3000 {
		t.Errorf("unexpected realtime defaults %+v", cfg.Realtime)
	}
	if cfg.OrderBook.PollIntervalMS != 3000 {
		t.Errorf("PollIntervalMS = %d; want 3000", cfg.OrderBook.PollIntervalMS)
	}
	if got := ReconnectPolicy(cfg)(7); got != 3*time.Second {
		t.Errorf("default reconnect delay = %s; want 3s", got)
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad base url", "api: {base_url: ftp://x, ws_url: ws://x}\nmarket: {symbols: [BTC]}"},
		{"bad ws url", "api: {base_url: http://x, ws_url: http://x}\nmarket: {symbols: [BTC]}"},
		{"no symbols", "api: {base_url: http://x, ws_url: ws://x}"},
		{"live without user", "api: {base_url: http://x, ws_url: ws://x}\nmarket: {symbols: [BTC]}\ntrading: {mode: live}"},
		{"unknown backoff", "api: {base_url: http://x, ws_url: ws://x}\nmarket: {symbols: [BTC]}\nrealtime: {backoff: random}"},
		{"redis without addr", "api: {base_url: http://x, ws_url: ws://x}\nmarket: {symbols: [BTC]}\nredis: {enabled: true}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.yaml)); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestParseConfig_EnvOverride(t *testing.T) {
	t.Setenv("PICKCOIN_API_BASE_URL", "https://api.example.com")
	t.Setenv("PICKCOIN_SELECTED", "eth")
	t.Setenv("PICKCOIN_TRADING_MODE", "live")
	t.Setenv("PICKCOIN_USER_ID", "42")

	cfg, err := ParseConfig([]byte(minimalConfig))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Market.Selected != "ETH" {
		t.Errorf("Selected = %q", cfg.Market.Selected)
	}
	if cfg.Trading.Mode != ModeLive || cfg.Trading.UserID != "42" {
		t.Errorf("unexpected trading section %+v", cfg.Trading)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("PICKCOIN_TEST_DOTENV=from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PICKCOIN_TEST_DOTENV", "")
	os.Unsetenv("PICKCOIN_TEST_DOTENV")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("PICKCOIN_TEST_DOTENV"); got != "from-file" {
		t.Errorf("expected value from .env, got %q", got)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(minimalConfig), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if ResolveConfigPath(path) != path {
		t.Error("explicit path must win")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", slog.String("symbol", "BTC_KRW"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, `"symbol":"BTC_KRW"`) {
		t.Errorf("expected JSON output, got %s", out)
	}
}

func TestPrintBanner(t *testing.T) {
	cfg, err := ParseConfig([]byte(minimalConfig))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	PrintBanner(&buf, cfg)
	if !strings.Contains(buf.String(), "BTC_KRW") {
		t.Error("banner should show the selected market")
	}
}
