package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Strategy holds the tunable trading parameters, loaded from a YAML file.
type Strategy struct {
	Watchlist           []string `yaml:"watchlist"`
	InitialCash         float64  `yaml:"initial_cash"`
	NumSlots            int      `yaml:"num_slots"`
	IntradayInterval    string   `yaml:"intraday_interval"`
	TrendEMAPeriod      int      `yaml:"trend_ema_period"`
	RSIPeriod           int      `yaml:"rsi_period"`
	ATRPeriod           int      `yaml:"atr_period"`
	ATRMultiplier       float64  `yaml:"atr_multiplier"`
	RSIBaseLevel        float64  `yaml:"rsi_base_level"`
	ThresholdPercentile float64  `yaml:"threshold_percentile"`
	RSIOversold         float64  `yaml:"rsi_oversold"`
	RSIOverbought       float64  `yaml:"rsi_overbought"`
	MACDFast            int      `yaml:"macd_fast"`
	MACDSlow            int      `yaml:"macd_slow"`
	MACDSignal          int      `yaml:"macd_signal"`
	ScanSchedule        string   `yaml:"scan_schedule"`
	EMACandidates       []int    `yaml:"ema_candidates"`
}

// Config holds all application configuration.
type Config struct {
	Strategy Strategy

	// Secrets and paths, from environment (.env supported)
	TelegramToken   string
	TelegramChatID  string
	BinanceAPIKey   string
	BinanceSecret   string
	DBPath          string
	DataDir         string // directory holding per-ticker bar CSVs
	ReportDir       string // directory for CSV report output
	LogLevel        string
	StrategyCfgPath string
}

// defaults mirror the original deployment's parameter set.
func defaultStrategy() Strategy {
	return Strategy{
		InitialCash:         100000,
		NumSlots:            5,
		IntradayInterval:    "15m",
		TrendEMAPeriod:      200,
		RSIPeriod:           14,
		ATRPeriod:           14,
		ATRMultiplier:       2.0,
		RSIBaseLevel:        35,
		ThresholdPercentile: 20,
		RSIOversold:         30,
		RSIOverbought:       70,
		MACDFast:            12,
		MACDSlow:            26,
		MACDSignal:          9,
		ScanSchedule:        "@every 15m",
		EMACandidates:       []int{20, 50, 100, 150, 200},
	}
}

// LoadConfig loads configuration from the strategy YAML file and environment
// variables (.env file supported). Validation collects every problem before
// failing so a broken deployment surfaces all at once.
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{Strategy: defaultStrategy()}
	var errs []string

	cfg.StrategyCfgPath = getEnv("STRATEGY_CONFIG", "./config/strategy.yaml")
	if err := loadStrategyFile(cfg.StrategyCfgPath, &cfg.Strategy); err != nil {
		return nil, fmt.Errorf("loading strategy config: %w", err)
	}

	cfg.TelegramToken = getEnv("TELEGRAM_TOKEN", "")
	cfg.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", "")
	cfg.BinanceAPIKey = getEnv("BINANCE_API_KEY", "")
	cfg.BinanceSecret = getEnv("BINANCE_API_SECRET", "")
	cfg.DBPath = getEnv("DB_PATH", "./data/swing_trader.db")
	cfg.DataDir = getEnv("DATA_DIR", "./data/bars")
	cfg.ReportDir = getEnv("REPORT_DIR", "./reports")
	cfg.LogLevel = getEnv("LOG_LEVEL", "INFO")

	s := &cfg.Strategy
	if len(s.Watchlist) == 0 {
		errs = append(errs, "watchlist must list at least one ticker")
	}
	if s.InitialCash <= 0 {
		errs = append(errs, "initial_cash must be positive")
	}
	if s.NumSlots <= 0 {
		errs = append(errs, "num_slots must be positive")
	}
	if s.TrendEMAPeriod <= 0 || s.RSIPeriod <= 0 || s.ATRPeriod <= 0 {
		errs = append(errs, "indicator periods (EMA, RSI, ATR) must be positive")
	}
	if s.ATRMultiplier <= 0 {
		errs = append(errs, "atr_multiplier must be positive")
	}
	if s.ThresholdPercentile < 0 || s.ThresholdPercentile > 100 {
		errs = append(errs, "threshold_percentile must be between 0 and 100")
	}
	if s.RSIOverbought <= s.RSIOversold || s.RSIOverbought > 100 || s.RSIOversold < 0 {
		errs = append(errs, "invalid RSI bands (overbought must be > oversold, between 0-100)")
	}
	if s.MACDFast <= 0 || s.MACDSlow <= 0 || s.MACDSignal <= 0 {
		errs = append(errs, "MACD periods must be positive")
	}
	if s.MACDFast >= s.MACDSlow {
		errs = append(errs, "macd_fast must be less than macd_slow")
	}
	for _, p := range s.EMACandidates {
		if p <= 0 {
			errs = append(errs, "ema_candidates must all be positive")
			break
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// loadStrategyFile overlays the YAML file onto the defaults. A missing file
// is fatal: the watchlist has no sensible default.
func loadStrategyFile(path string, s *Strategy) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
