// Package monitor implements the live-scanning variant of the strategy: on
// each cycle it recomputes the compound signal per watchlist ticker and sends
// alerts, without touching a ledger. Each cycle is independent; a ticker's
// failure never stops the rest of the watchlist.
package monitor

import (
	"context"
	"fmt"
	"math"

	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/ports"
	"swingTraderBot/internal/strategy/feed"
)

// Config holds configuration for the live scanner.
type Config struct {
	Watchlist      []string
	Interval       string // bar interval to scan, e.g. "15m"
	BarLimit       int    // how many recent bars to pull per ticker
	TrendEMAPeriod int
	RSIPeriod      int
	RSIOversold    float64
	RSIOverbought  float64
	MACDFast       int
	MACDSlow       int
	MACDSignal     int
}

// Scanner evaluates the compound signal across the watchlist once per Run.
type Scanner struct {
	cfg      Config
	provider ports.MarketDataProvider
	notifier ports.Notifier
	logger   ports.Logger
}

// New creates a scanner. The notifier may be nil; alerts are then only logged.
func New(cfg Config, provider ports.MarketDataProvider, notifier ports.Notifier, logger ports.Logger) (*Scanner, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for scanner")
	}
	if provider == nil {
		return nil, fmt.Errorf("market data provider is required for scanner")
	}
	if len(cfg.Watchlist) == 0 {
		return nil, fmt.Errorf("watchlist is empty: %w", ports.ErrConfigurationError)
	}
	if cfg.TrendEMAPeriod <= 0 || cfg.RSIPeriod <= 0 || cfg.MACDFast <= 0 || cfg.MACDSlow <= 0 || cfg.MACDSignal <= 0 {
		return nil, fmt.Errorf("indicator periods must be positive: %w", ports.ErrConfigurationError)
	}
	if cfg.BarLimit <= 0 {
		cfg.BarLimit = 300
	}
	return &Scanner{cfg: cfg, provider: provider, notifier: notifier, logger: logger}, nil
}

// Name identifies the scanner to the scheduler.
func (s *Scanner) Name() string { return "market-scan" }

// Run executes one scan cycle over the watchlist. Per-ticker data failures
// and notification failures are logged and skipped; Run itself only fails on
// context cancellation.
func (s *Scanner) Run(ctx context.Context) error {
	for _, ticker := range s.cfg.Watchlist {
		if err := ctx.Err(); err != nil {
			return err
		}

		bars, err := s.provider.GetBars(ctx, ticker, s.cfg.Interval, s.cfg.BarLimit)
		if err != nil {
			s.logger.Error(ctx, err, "Failed to fetch bars, skipping ticker", map[string]interface{}{"ticker": ticker})
			continue
		}

		msg, ok := s.Evaluate(ticker, bars)
		if !ok {
			continue
		}

		s.logger.Info(ctx, "Compound signal triggered", map[string]interface{}{"ticker": ticker})
		if s.notifier == nil {
			continue
		}
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.logger.Error(ctx, err, "Alert delivery failed", map[string]interface{}{"ticker": ticker})
		}
	}
	return nil
}

// Evaluate computes the compound signal for one ticker from its recent bars
// and renders the alert message when it fires.
//
// Long: price above the trend EMA, RSI at/below oversold, MACD histogram
// rising. Short: price below the trend EMA, RSI at/above overbought, MACD
// histogram falling.
func (s *Scanner) Evaluate(ticker string, bars []*domain.Bar) (string, bool) {
	if len(bars) < 2 {
		return "", false
	}
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	ema := feed.EmaSeries(closes, s.cfg.TrendEMAPeriod)
	rsi := feed.RsiSeries(closes, s.cfg.RSIPeriod)
	hist := feed.MacdHistogram(closes, s.cfg.MACDFast, s.cfg.MACDSlow, s.cfg.MACDSignal)

	last := len(bars) - 1
	price := closes[last]
	currEMA := ema[last]
	currRSI := rsi[last]
	currHist := hist[last]
	prevHist := hist[last-1]

	if math.IsNaN(currEMA) || math.IsNaN(currRSI) || math.IsNaN(currHist) || math.IsNaN(prevHist) {
		return "", false // not enough history yet
	}

	switch {
	case price > currEMA && currRSI <= s.cfg.RSIOversold && currHist > prevHist:
		msg := fmt.Sprintf("🚀 *LONG %s*\nPrice: $%.2f (above EMA%d)\nRSI: %.2f (oversold rebound)\nMACD: histogram turning up",
			ticker, price, s.cfg.TrendEMAPeriod, currRSI)
		return msg, true
	case price < currEMA && currRSI >= s.cfg.RSIOverbought && currHist < prevHist:
		msg := fmt.Sprintf("📉 *SHORT %s*\nPrice: $%.2f (below EMA%d)\nRSI: %.2f (overbought rollover)\nMACD: histogram turning down",
			ticker, price, s.cfg.TrendEMAPeriod, currRSI)
		return msg, true
	}
	return "", false
}
