// Package feed turns raw price bars into the aligned indicator series the
// simulation and the live scanner consume. Indicator math is delegated to
// go-talib; warmup regions are explicit NaNs so a missing value can never be
// mistaken for zero.
package feed

import (
	"fmt"
	"math"
	"time"

	talib "github.com/markcheno/go-talib"

	"swingTraderBot/internal/domain"
)

// DateKey formats a timestamp as the calendar-date key used by daily trend maps.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Config holds the indicator periods for an intraday series.
type Config struct {
	RSIPeriod int
	ATRPeriod int
}

// Series is one ticker's intraday bars with aligned RSI and ATR values,
// indexed by exact timestamp. Bars are ascending with no duplicates.
type Series struct {
	Ticker string
	Bars   []*domain.Bar
	RSI    []float64 // aligned with Bars; NaN during warmup
	ATR    []float64 // aligned with Bars; NaN during warmup

	index map[int64]int
}

// NewSeries builds a series from bars and already-computed indicator values.
// The indicator slices must align with bars one-to-one; undefined entries are
// NaN. Bars must be strictly ascending by timestamp.
func NewSeries(ticker string, bars []*domain.Bar, rsi, atr []float64) (*Series, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars for ticker %s", ticker)
	}
	if len(rsi) != len(bars) || len(atr) != len(bars) {
		return nil, fmt.Errorf("indicator series for %s not aligned with bars", ticker)
	}

	index := make(map[int64]int, len(bars))
	for i, b := range bars {
		if i > 0 && !bars[i-1].Time.Before(b.Time) {
			return nil, fmt.Errorf("bars for %s not strictly ascending at index %d", ticker, i)
		}
		index[b.Time.UnixNano()] = i
	}

	return &Series{Ticker: ticker, Bars: bars, RSI: rsi, ATR: atr, index: index}, nil
}

// BuildIntraday validates the bar ordering and computes the aligned
// decision-indicator and volatility-range series for one ticker.
func BuildIntraday(ticker string, bars []*domain.Bar, cfg Config) (*Series, error) {
	if cfg.RSIPeriod <= 0 || cfg.ATRPeriod <= 0 {
		return nil, fmt.Errorf("indicator periods must be positive")
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars for ticker %s", ticker)
	}

	high := make([]float64, len(bars))
	low := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		if i > 0 && !bars[i-1].Time.Before(b.Time) {
			return nil, fmt.Errorf("bars for %s not strictly ascending at index %d", ticker, i)
		}
		high[i] = b.High
		low[i] = b.Low
		closes[i] = b.Close
	}

	return NewSeries(ticker, bars,
		RsiSeries(closes, cfg.RSIPeriod),
		AtrSeries(high, low, closes, cfg.ATRPeriod))
}

// At returns the index of the bar at exactly t, if one exists.
func (s *Series) At(t time.Time) (int, bool) {
	i, ok := s.index[t.UnixNano()]
	return i, ok
}

// RSIAt returns the decision-indicator value at bar i. Warmup bars report not-ok.
func (s *Series) RSIAt(i int) (float64, bool) {
	if i < 0 || i >= len(s.RSI) || math.IsNaN(s.RSI[i]) {
		return 0, false
	}
	return s.RSI[i], true
}

// ATRAt returns the volatility-range value at bar i. Warmup bars report not-ok.
func (s *Series) ATRAt(i int) (float64, bool) {
	if i < 0 || i >= len(s.ATR) || math.IsNaN(s.ATR[i]) {
		return 0, false
	}
	return s.ATR[i], true
}

// BuildDailyTrend computes the long-period EMA over daily bars and keys each
// value by calendar date, for use as the slow trend reference.
func BuildDailyTrend(bars []*domain.Bar, emaPeriod int) (map[string]float64, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no daily bars")
	}
	if emaPeriod <= 0 {
		return nil, fmt.Errorf("EMA period must be positive")
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		if i > 0 && !bars[i-1].Time.Before(b.Time) {
			return nil, fmt.Errorf("daily bars not strictly ascending at index %d", i)
		}
		closes[i] = b.Close
	}

	ema := EmaSeries(closes, emaPeriod)
	trend := make(map[string]float64, len(bars))
	for i, b := range bars {
		if !math.IsNaN(ema[i]) {
			trend[DateKey(b.Time)] = ema[i]
		}
	}
	return trend, nil
}

// TrendAt looks up the trend reference for the calendar date of t.
func TrendAt(trend map[string]float64, t time.Time) (float64, bool) {
	v, ok := trend[DateKey(t)]
	return v, ok
}

// The wrappers below guard inputs shorter than the indicator lookback
// themselves: talib indexes past the end of such inputs, and a series with no
// bar past the lookback has no defined values anyway, so they come back
// all-NaN like any other warmup region.

// EmaSeries computes an exponential moving average with NaN warmup.
func EmaSeries(closes []float64, period int) []float64 {
	if len(closes) < period {
		return allNaN(len(closes))
	}
	return withWarmup(talib.Ema(closes, period), period-1)
}

// RsiSeries computes Wilder's RSI with NaN warmup.
func RsiSeries(closes []float64, period int) []float64 {
	if len(closes) <= period {
		return allNaN(len(closes))
	}
	return withWarmup(talib.Rsi(closes, period), period)
}

// AtrSeries computes the average true range with NaN warmup.
func AtrSeries(high, low, closes []float64, period int) []float64 {
	if len(closes) <= period {
		return allNaN(len(closes))
	}
	return withWarmup(talib.Atr(high, low, closes, period), period)
}

// MacdHistogram computes the MACD histogram (line minus signal) with NaN warmup.
func MacdHistogram(closes []float64, fast, slow, signal int) []float64 {
	if len(closes) <= slow+signal-2 {
		return allNaN(len(closes))
	}
	_, _, hist := talib.Macd(closes, fast, slow, signal)
	return withWarmup(hist, slow+signal-2)
}

func allNaN(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// withWarmup replaces the indicator's zero-filled lookback region with NaN so
// downstream lookups treat it as unavailable rather than a real zero.
func withWarmup(values []float64, lookback int) []float64 {
	if lookback < 0 {
		lookback = 0
	}
	if lookback > len(values) {
		lookback = len(values)
	}
	for i := 0; i < lookback; i++ {
		values[i] = math.NaN()
	}
	return values
}
