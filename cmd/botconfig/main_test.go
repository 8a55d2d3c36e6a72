package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"signal_bot/internal/config"
)

const baseYAML = `
service_name: signal_bot
symbol: BTCBRL
quote_asset: BRL
timeframe: 1m
candle_limit: 50
poll_interval: 10s
simulated: true
trade_fraction: 0.05
grid:
  trade_variation: 0.02
  max_drawdown: 0.1
  max_consecutive_buys: 3
strategies:
  grid:
    poll_interval: 30s
    grid:
      max_drawdown: 0.15
  scalping:
    scalping:
      ema_fast: 5
      ema_slow: 13
      rsi_period: 14
      rsi_buy_below: 40
      rsi_sell_above: 60
`

func loadBase(t *testing.T, content string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		t.Fatalf("read base: %v", err)
	}
	return v
}

func decode(t *testing.T, bs []byte) *config.Config {
	t.Helper()
	cfg := config.Default()
	if err := yaml.NewDecoder(bytes.NewReader(bs)).Decode(cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return cfg
}

func TestRenderGridOverridesNested(t *testing.T) {
	base := loadBase(t, baseYAML)

	bs, err := renderValues(base, "grid")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(bs), "strategies") {
		t.Fatalf("strategies section leaked:\n%s", bs)
	}
	cfg := decode(t, bs)
	if cfg.Strategy != "grid" || cfg.PollInterval != 30*time.Second {
		t.Fatalf("strategy=%s poll=%s", cfg.Strategy, cfg.PollInterval)
	}
	if cfg.Grid.MaxDrawdown != 0.15 || cfg.Grid.TradeVariation != 0.02 || cfg.Grid.MaxConsecutiveBuys != 3 {
		t.Fatalf("grid = %+v", cfg.Grid)
	}
}

func TestRenderScalping(t *testing.T) {
	bs, err := renderValues(loadBase(t, baseYAML), "scalping")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	cfg := decode(t, bs)
	if cfg.Strategy != "scalping" || cfg.Scalping.EMASlow != 13 || cfg.PollInterval != 10*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestRenderUnknownStrategy(t *testing.T) {
	if _, err := renderValues(loadBase(t, baseYAML), "martingale"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRenderRejectsInvalid(t *testing.T) {
	bad := baseYAML + `
  broken:
    grid:
      max_drawdown: 0.01
`
	if _, err := renderValues(loadBase(t, bad), "broken"); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestStrategyNamesAndWrite(t *testing.T) {
	base := loadBase(t, baseYAML)
	names := strategyNames(base)
	if len(names) != 2 || names[0] != "grid" || names[1] != "scalping" {
		t.Fatalf("names = %v", names)
	}

	dir := t.TempDir()
	path, err := writeValues(dir, "grid", []byte("strategy: grid\n"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path != filepath.Join(dir, "values_grid.yaml") {
		t.Fatalf("path = %s", path)
	}
	if raw, _ := os.ReadFile(path); string(raw) != "strategy: grid\n" {
		t.Fatalf("content = %q", raw)
	}
}
