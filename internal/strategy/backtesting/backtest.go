package backtesting

import (
	"context"
	"fmt"

	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/ledger"
	"swingTraderBot/internal/ports"
	"swingTraderBot/internal/strategy/feed"
	"swingTraderBot/internal/strategy/threshold"
)

// Config holds configuration for a multi-ticker simulation run.
type Config struct {
	Tickers             []string // fixed enumeration order; first is the master clock
	InitialCash         float64
	NumSlots            int
	ATRMultiplier       float64 // trailing stop distance in ATR units
	BaseRSILevel        float64 // fallback entry trigger when no distribution exists
	ThresholdPercentile float64 // low percentile of the ticker's RSI history
}

// Inputs carries the precomputed per-ticker series the simulation reads.
// Intraday series provide close/high, RSI, and ATR; DailyTrend maps calendar
// dates to the long-period EMA used as the trend filter.
type Inputs struct {
	Intraday   map[string]*feed.Series
	DailyTrend map[string]map[string]float64
}

// Result holds everything a run produces: the ledger's audit trails, the
// equity curve sampled once per master-clock bar, and the per-ticker
// thresholds that were in effect.
type Result struct {
	Trades      []domain.ClosedTrade
	Signals     []domain.SignalEvent
	EquityCurve []domain.EquityPoint
	Thresholds  map[string]float64
	FinalValue  float64
}

// Run drives the ledger bar-by-bar across the shared time axis. For each
// ticker, exit logic is applied strictly before entry logic within a bar, so
// a ticker that stops out cannot re-enter on the bar it exited. Per-ticker
// data gaps (missing bar, warmup indicator, absent trend value for the date)
// skip that ticker for that bar; they never abort the run.
func Run(ctx context.Context, cfg Config, inputs Inputs, log ports.Logger) (*Result, error) {
	if len(cfg.Tickers) == 0 {
		return nil, fmt.Errorf("no tickers configured")
	}
	if cfg.InitialCash <= 0 || cfg.NumSlots <= 0 {
		return nil, fmt.Errorf("initial cash and slot count must be positive")
	}

	clock, ok := inputs.Intraday[cfg.Tickers[0]]
	if !ok {
		return nil, fmt.Errorf("no intraday series for reference ticker %s", cfg.Tickers[0])
	}

	book := ledger.New(cfg.InitialCash, cfg.NumSlots)

	// One adaptive threshold per ticker, derived up front from that ticker's
	// own RSI distribution.
	thresholds := make(map[string]float64, len(cfg.Tickers))
	for _, ticker := range cfg.Tickers {
		series, ok := inputs.Intraday[ticker]
		if !ok {
			thresholds[ticker] = cfg.BaseRSILevel
			continue
		}
		thresholds[ticker] = threshold.Adaptive(series.RSI, cfg.BaseRSILevel, cfg.ThresholdPercentile)
	}
	log.Debug(ctx, "Adaptive thresholds computed", map[string]interface{}{"thresholds": thresholds})

	equity := make([]domain.EquityPoint, 0, len(clock.Bars))

	for _, clockBar := range clock.Bars {
		t := clockBar.Time
		pricesNow := make(map[string]float64, len(cfg.Tickers))

		for _, ticker := range cfg.Tickers {
			series, ok := inputs.Intraday[ticker]
			if !ok {
				continue
			}
			i, ok := series.At(t)
			if !ok {
				continue // no bar for this ticker at this timestamp
			}
			bar := series.Bars[i]
			pricesNow[ticker] = bar.Close

			// Exit logic first.
			if pos, held := book.Position(ticker); held {
				if bar.Close <= pos.TrailingStop {
					book.Close(ticker, bar.Close, t)
				} else if atr, ok := series.ATRAt(i); ok {
					book.UpdateTrailingStop(ticker, bar.Close-atr*cfg.ATRMultiplier)
				}
				continue
			}

			// Entry logic: RSI crossing the adaptive threshold upward.
			if i == 0 {
				continue
			}
			prevRSI, okPrev := series.RSIAt(i - 1)
			currRSI, okCurr := series.RSIAt(i)
			if !okPrev || !okCurr {
				continue
			}
			trig := thresholds[ticker]
			if !(prevRSI < trig && currRSI >= trig) {
				continue
			}

			trendRef, ok := feed.TrendAt(inputs.DailyTrend[ticker], t)
			if !ok {
				continue // trend series not yet available for this date
			}
			atr, ok := series.ATRAt(i)
			if !ok {
				continue
			}

			trendPassed := bar.Close > trendRef
			slotFree := book.CanOpen(ticker)

			// Every crossing is recorded, whatever the outcome: the log is
			// what separates signals lost to the trend veto from signals
			// lost to capacity.
			book.RecordSignal(domain.SignalEvent{
				Time:          t,
				Ticker:        ticker,
				Price:         bar.Close,
				TrendRef:      trendRef,
				RSI:           currRSI,
				TrendPassed:   trendPassed,
				SlotAvailable: slotFree,
			})

			prevHigh := series.Bars[i-1].High
			if trendPassed && bar.Close > prevHigh && slotFree {
				book.Open(ticker, bar.Close, bar.Close-atr*cfg.ATRMultiplier, t)
			}
		}

		equity = append(equity, domain.EquityPoint{Time: t, Value: book.TotalValue(pricesNow)})
	}

	final := book.InitialCash()
	if len(equity) > 0 {
		final = equity[len(equity)-1].Value
	}

	return &Result{
		Trades:      book.ClosedTrades(),
		Signals:     book.Signals(),
		EquityCurve: equity,
		Thresholds:  thresholds,
		FinalValue:  final,
	}, nil
}
