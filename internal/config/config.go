package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDir         = "configs"
)

// Config: всё, что нужно процессу бота. Секреты приходят только из окружения.
type Config struct {
	ServiceName string `yaml:"service_name"`

	// Binance
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"-"`
	APISecret string `yaml:"-"`

	// Рынок
	Symbol       string        `yaml:"symbol"`
	QuoteAsset   string        `yaml:"quote_asset"`
	Timeframe    string        `yaml:"timeframe"`
	CandleLimit  int           `yaml:"candle_limit"`
	PollInterval time.Duration `yaml:"poll_interval"`
	CycleTimeout time.Duration `yaml:"cycle_timeout"`

	// Торговля
	Strategy          string  `yaml:"strategy"` // grid | scalping
	Simulated         bool    `yaml:"simulated"`
	TradeFraction     float64 `yaml:"trade_fraction"`      // доля свободного баланса на сделку
	PaperQuoteBalance float64 `yaml:"paper_quote_balance"` // только для симуляции, 0, брать с биржи

	Grid     GridConfig     `yaml:"grid"`
	Scalping ScalpingConfig `yaml:"scalping"`

	// Вывод
	LogDir   string `yaml:"log_dir"`
	CSVDir   string `yaml:"csv_dir"`
	LogLevel string `yaml:"log_level"`

	// Опциональные поверхности
	Telegram struct {
		Token  string `yaml:"-"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	HealthAddr string `yaml:"health_addr"` // пусто: HTTP не поднимаем
	Tracing    struct {
		Host string `yaml:"host"` // пусто: noop-трейсер
		Port int    `yaml:"port"`
	} `yaml:"tracing"`

	envErr error // первая нераспарсенная переменная окружения, отдаётся из Validate
}

type GridConfig struct {
	TradeVariation     float64 `yaml:"trade_variation"`
	MaxDrawdown        float64 `yaml:"max_drawdown"`
	MaxConsecutiveBuys int     `yaml:"max_consecutive_buys"`
}

type ScalpingConfig struct {
	EMAFast      int     `yaml:"ema_fast"`
	EMASlow      int     `yaml:"ema_slow"`
	RSIPeriod    int     `yaml:"rsi_period"`
	RSIBuyBelow  float64 `yaml:"rsi_buy_below"`
	RSISellAbove float64 `yaml:"rsi_sell_above"`
}

// Default: BTCBRL, минутные свечи, grid в симуляции.
func Default() *Config {
	return &Config{
		ServiceName:  "signal_bot",
		BaseURL:      "https://api.binance.com",
		Symbol:       "BTCBRL",
		QuoteAsset:   "BRL",
		Timeframe:    "1m",
		CandleLimit:  50,
		PollInterval: 10 * time.Second,
		CycleTimeout: 30 * time.Second,

		Strategy:      "grid",
		Simulated:     true,
		TradeFraction: 0.05,

		Grid: GridConfig{
			TradeVariation:     0.02,
			MaxDrawdown:        0.10,
			MaxConsecutiveBuys: 3,
		},
		Scalping: ScalpingConfig{
			EMAFast:      5,
			EMASlow:      13,
			RSIPeriod:    14,
			RSIBuyBelow:  40,
			RSISellAbove: 60,
		},

		LogDir:   filepath.Join("output", "logs"),
		CSVDir:   filepath.Join("output", "csv"),
		LogLevel: "info",
	}
}

// Load: дефолты -> configs/$CONFIG_FILE (если есть) -> переменные окружения (.env тоже).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if err := cfg.readFile(os.Getenv(configFilePathENV)); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(name string) error {
	explicit := name != ""
	if !explicit {
		name = "values_local.yaml"
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(configDir, name)
	}

	file, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(c); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServiceName = getenvDefault("SERVICE_NAME", c.ServiceName)

	c.BaseURL = getenvDefault("BINANCE_BASE_URL", c.BaseURL)
	c.APIKey = os.Getenv("BINANCE_API_KEY")
	c.APISecret = os.Getenv("BINANCE_API_SECRET")

	c.Symbol = strings.ToUpper(getenvDefault("SYMBOL", c.Symbol))
	c.QuoteAsset = strings.ToUpper(getenvDefault("QUOTE_ASSET", c.QuoteAsset))
	c.Timeframe = normTimeframe(getenvDefault("TIMEFRAME", c.Timeframe))
	c.CandleLimit = intFromEnv("CANDLE_LIMIT", c.CandleLimit)
	c.PollInterval = durationFromEnv("POLL_INTERVAL", c.PollInterval)
	c.CycleTimeout = durationFromEnv("CYCLE_TIMEOUT", c.CycleTimeout)

	c.Strategy = strings.ToLower(getenvDefault("STRATEGY", c.Strategy))
	c.Simulated = boolFromEnv("SIMULATED_MODE", c.Simulated)
	c.TradeFraction = floatFromEnv("TRADE_PERCENTAGE", c.TradeFraction)
	c.PaperQuoteBalance = floatFromEnv("PAPER_QUOTE_BALANCE", c.PaperQuoteBalance)

	c.Grid.TradeVariation = floatFromEnv("TRADE_VARIATION", c.Grid.TradeVariation)
	c.Grid.MaxDrawdown = floatFromEnv("MAX_DRAWDOWN", c.Grid.MaxDrawdown)
	c.Grid.MaxConsecutiveBuys = intFromEnv("MAX_CONSECUTIVE_BUYS", c.Grid.MaxConsecutiveBuys)

	c.Scalping.EMAFast = intFromEnv("EMA_FAST", c.Scalping.EMAFast)
	c.Scalping.EMASlow = intFromEnv("EMA_SLOW", c.Scalping.EMASlow)
	c.Scalping.RSIPeriod = intFromEnv("RSI_PERIOD", c.Scalping.RSIPeriod)
	c.Scalping.RSIBuyBelow = floatFromEnv("RSI_BUY_BELOW", c.Scalping.RSIBuyBelow)
	c.Scalping.RSISellAbove = floatFromEnv("RSI_SELL_ABOVE", c.Scalping.RSISellAbove)

	c.LogDir = getenvDefault("LOG_DIR", c.LogDir)
	c.CSVDir = getenvDefault("CSV_DIR", c.CSVDir)
	c.LogLevel = getenvDefault("LOG_LEVEL", c.LogLevel)

	c.Telegram.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			c.envErr = fmt.Errorf("TELEGRAM_CHAT_ID %q is not an integer chat id", v)
		} else {
			c.Telegram.ChatID = id
		}
	}
	c.HealthAddr = getenvDefault("HEALTH_ADDR", c.HealthAddr)
	c.Tracing.Host = getenvDefault("JAEGER_HOST", c.Tracing.Host)
	c.Tracing.Port = intFromEnv("JAEGER_PORT", c.Tracing.Port)
}

// Validate проверяет то, без чего цикл не имеет смысла.
func (c *Config) Validate() error {
	if c.envErr != nil {
		return c.envErr
	}
	if c.Symbol == "" {
		return fmt.Errorf("SYMBOL is required")
	}
	if c.QuoteAsset == "" {
		return fmt.Errorf("QUOTE_ASSET is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be > 0")
	}
	if c.CycleTimeout <= 0 {
		return fmt.Errorf("CYCLE_TIMEOUT must be > 0")
	}
	if c.CandleLimit <= 0 {
		return fmt.Errorf("CANDLE_LIMIT must be > 0")
	}
	if c.TradeFraction <= 0 || c.TradeFraction > 1 {
		return fmt.Errorf("TRADE_PERCENTAGE must be in (0, 1]")
	}
	if !c.Simulated && (c.APIKey == "" || c.APISecret == "") {
		return fmt.Errorf("BINANCE_API_KEY and BINANCE_API_SECRET are required in real mode")
	}

	switch c.Strategy {
	case "grid":
		g := c.Grid
		if g.TradeVariation <= 0 || g.MaxDrawdown <= 0 {
			return fmt.Errorf("TRADE_VARIATION and MAX_DRAWDOWN must be > 0")
		}
		if g.MaxDrawdown <= g.TradeVariation {
			return fmt.Errorf("MAX_DRAWDOWN must be > TRADE_VARIATION")
		}
		if g.MaxConsecutiveBuys <= 0 {
			return fmt.Errorf("MAX_CONSECUTIVE_BUYS must be > 0")
		}
	case "scalping":
		s := c.Scalping
		if s.EMAFast <= 0 || s.RSIPeriod <= 0 {
			return fmt.Errorf("EMA_FAST and RSI_PERIOD must be > 0")
		}
		if s.EMAFast >= s.EMASlow {
			return fmt.Errorf("EMA_FAST must be < EMA_SLOW")
		}
		if s.RSIBuyBelow >= s.RSISellAbove {
			return fmt.Errorf("RSI_BUY_BELOW must be < RSI_SELL_ABOVE")
		}
		need := max(s.EMASlow, s.RSIPeriod) + 2
		if c.CandleLimit < need {
			return fmt.Errorf("CANDLE_LIMIT must be >= %d for scalping", need)
		}
	default:
		return fmt.Errorf("unknown STRATEGY %q (grid|scalping)", c.Strategy)
	}
	return nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "1" || v == "true" || v == "TRUE" {
			return true
		}
		if v == "0" || v == "false" || v == "FALSE" {
			return false
		}
	}
	return def
}

// normTimeframe приводит интервал к виду Binance: "candle1H" -> "1h", "60m" -> "1h".
func normTimeframe(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "candle"), "Candle")
	switch strings.ToLower(s) {
	case "60m", "1h":
		return "1h"
	case "240m", "4h":
		return "4h"
	case "1440m", "1d":
		return "1d"
	}
	// 1M (месяц) у Binance регистрозависим
	if s == "1M" {
		return s
	}
	return strings.ToLower(s)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
