package backtesting

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/strategy/feed"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.debugMsgs = append(m.debugMsgs, msg)
}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

var baseTime = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

// buildSeries constructs a test series with explicit closes, highs, and RSI
// values, 15 minutes apart, with a constant ATR of 2.
func buildSeries(t *testing.T, ticker string, closes, highs, rsi []float64) *feed.Series {
	t.Helper()
	require.Equal(t, len(closes), len(highs))
	require.Equal(t, len(closes), len(rsi))

	bars := make([]*domain.Bar, len(closes))
	atr := make([]float64, len(closes))
	for i := range closes {
		bars[i] = &domain.Bar{
			Time:   baseTime.Add(time.Duration(i) * 15 * time.Minute),
			Ticker: ticker,
			Open:   closes[i],
			High:   highs[i],
			Low:    closes[i] - 1,
			Close:  closes[i],
		}
		atr[i] = 2
	}
	s, err := feed.NewSeries(ticker, bars, rsi, atr)
	require.NoError(t, err)
	return s
}

// flatTrend returns a daily trend map covering the test day with a constant value.
func flatTrend(value float64) map[string]float64 {
	return map[string]float64{feed.DateKey(baseTime): value}
}

func defaultConfig(tickers ...string) Config {
	return Config{
		Tickers:             tickers,
		InitialCash:         100000,
		NumSlots:            5,
		ATRMultiplier:       1,
		BaseRSILevel:        35,
		ThresholdPercentile: 25,
	}
}

func TestRunValidation(t *testing.T) {
	log := &mockLogger{}

	_, err := Run(context.Background(), Config{}, Inputs{}, log)
	assert.Error(t, err)

	cfg := defaultConfig("AAA")
	_, err = Run(context.Background(), cfg, Inputs{Intraday: map[string]*feed.Series{}}, log)
	assert.Error(t, err, "missing reference ticker series")

	cfg.InitialCash = 0
	_, err = Run(context.Background(), cfg, Inputs{}, log)
	assert.Error(t, err)
}

func TestRunEntryExitRoundTrip(t *testing.T) {
	// RSI distribution sorted: [30 40 50 50 50 50]; the 25th percentile is 40,
	// within the clamp band, so the adaptive threshold is exactly 40.
	// Bar 3 crosses it upward (30 -> 40) with close 101 above the trend (100)
	// and above bar 2's high (100.5). ATR 2 and multiplier 1 put the initial
	// stop at 99; bar 4 ratchets it to 102; bar 5 closes at 101.5 <= 102.
	series := buildSeries(t, "AAA",
		[]float64{100, 100, 100, 101, 104, 101.5},
		[]float64{100.5, 100.5, 100.5, 101.5, 104.5, 102},
		[]float64{50, 50, 30, 40, 50, 50},
	)
	inputs := Inputs{
		Intraday:   map[string]*feed.Series{"AAA": series},
		DailyTrend: map[string]map[string]float64{"AAA": flatTrend(100)},
	}

	res, err := Run(context.Background(), defaultConfig("AAA"), inputs, &mockLogger{})
	require.NoError(t, err)

	assert.Equal(t, 40.0, res.Thresholds["AAA"])

	require.Len(t, res.Signals, 1)
	sig := res.Signals[0]
	assert.Equal(t, "AAA", sig.Ticker)
	assert.Equal(t, 101.0, sig.Price)
	assert.Equal(t, 100.0, sig.TrendRef)
	assert.Equal(t, 40.0, sig.RSI)
	assert.True(t, sig.TrendPassed)
	assert.True(t, sig.SlotAvailable)

	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Equal(t, 101.0, tr.BuyPrice)
	assert.Equal(t, 101.5, tr.ClosePrice)
	assert.Equal(t, baseTime.Add(45*time.Minute), tr.BuyTime)
	assert.Equal(t, baseTime.Add(75*time.Minute), tr.CloseTime)
	assert.Positive(t, tr.PnLCash)

	// Equity sampled once per master-clock bar, starting flat.
	require.Len(t, res.EquityCurve, 6)
	assert.Equal(t, 100000.0, res.EquityCurve[0].Value)
	assert.InDelta(t, 100000+tr.PnLCash, res.FinalValue, 1e-9)
}

func TestRunTrendVetoStillRecordsSignal(t *testing.T) {
	// Crossing fires but price sits below the trend line: no entry, yet the
	// signal is logged with the trend flag down.
	series := buildSeries(t, "AAA",
		[]float64{100, 100, 100, 101, 101, 101},
		[]float64{100.5, 100.5, 100.5, 101.5, 101.5, 101.5},
		[]float64{50, 50, 30, 40, 50, 50},
	)
	inputs := Inputs{
		Intraday:   map[string]*feed.Series{"AAA": series},
		DailyTrend: map[string]map[string]float64{"AAA": flatTrend(150)},
	}

	res, err := Run(context.Background(), defaultConfig("AAA"), inputs, &mockLogger{})
	require.NoError(t, err)

	require.Len(t, res.Signals, 1)
	assert.False(t, res.Signals[0].TrendPassed)
	assert.True(t, res.Signals[0].SlotAvailable)
	assert.Empty(t, res.Trades)
}

func TestRunCapacityLostSignal(t *testing.T) {
	// One slot, two tickers crossing on the same bar. The first ticker in the
	// enumeration order wins the slot; the second still gets its signal
	// logged, marked as lost to capacity.
	mk := func(ticker string) *feed.Series {
		return buildSeries(t, ticker,
			[]float64{100, 100, 100, 101, 104, 104},
			[]float64{100.5, 100.5, 100.5, 101.5, 104.5, 104.5},
			[]float64{50, 50, 30, 40, 50, 50},
		)
	}
	inputs := Inputs{
		Intraday: map[string]*feed.Series{"AAA": mk("AAA"), "BBB": mk("BBB")},
		DailyTrend: map[string]map[string]float64{
			"AAA": flatTrend(100),
			"BBB": flatTrend(100),
		},
	}
	cfg := defaultConfig("AAA", "BBB")
	cfg.NumSlots = 1

	res, err := Run(context.Background(), cfg, inputs, &mockLogger{})
	require.NoError(t, err)

	require.Len(t, res.Signals, 2)
	assert.Equal(t, "AAA", res.Signals[0].Ticker)
	assert.True(t, res.Signals[0].SlotAvailable)
	assert.Equal(t, "BBB", res.Signals[1].Ticker)
	assert.False(t, res.Signals[1].SlotAvailable)
	assert.True(t, res.Signals[1].TrendPassed)
}

func TestRunNoReentrySameBar(t *testing.T) {
	// Bar 3 opens; bar 4 gaps down through the stop while the RSI is also
	// crossing upward again. The exit must win the bar and the crossing must
	// not produce a fresh entry or signal on that same bar.
	series := buildSeries(t, "AAA",
		[]float64{100, 100, 100, 101, 95, 95},
		[]float64{100.5, 100.5, 100.5, 101.5, 101.5, 95.5},
		[]float64{50, 50, 30, 40, 45, 50},
	)
	inputs := Inputs{
		Intraday:   map[string]*feed.Series{"AAA": series},
		DailyTrend: map[string]map[string]float64{"AAA": flatTrend(100)},
	}

	res, err := Run(context.Background(), defaultConfig("AAA"), inputs, &mockLogger{})
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	assert.Equal(t, 95.0, res.Trades[0].ClosePrice)
	assert.Equal(t, baseTime.Add(60*time.Minute), res.Trades[0].CloseTime)
	// Only the original entry signal exists.
	require.Len(t, res.Signals, 1)
	assert.Equal(t, baseTime.Add(45*time.Minute), res.Signals[0].Time)
}

func TestRunBreakoutVeto(t *testing.T) {
	// Crossing and trend pass, but the close does not clear the previous
	// bar's high: momentum confirmation fails and no position opens.
	series := buildSeries(t, "AAA",
		[]float64{100, 100, 100, 101, 101, 101},
		[]float64{100.5, 100.5, 102, 101.5, 101.5, 101.5},
		[]float64{50, 50, 30, 40, 50, 50},
	)
	inputs := Inputs{
		Intraday:   map[string]*feed.Series{"AAA": series},
		DailyTrend: map[string]map[string]float64{"AAA": flatTrend(100)},
	}

	res, err := Run(context.Background(), defaultConfig("AAA"), inputs, &mockLogger{})
	require.NoError(t, err)

	require.Len(t, res.Signals, 1)
	assert.True(t, res.Signals[0].TrendPassed)
	assert.Empty(t, res.Trades)
}

func TestRunMissingTrendSkipsTicker(t *testing.T) {
	// No trend value for the bar's calendar date: the ticker is skipped for
	// that bar without aborting the run or logging a half-formed signal.
	series := buildSeries(t, "AAA",
		[]float64{100, 100, 100, 101, 101, 101},
		[]float64{100.5, 100.5, 100.5, 101.5, 101.5, 101.5},
		[]float64{50, 50, 30, 40, 50, 50},
	)
	inputs := Inputs{
		Intraday:   map[string]*feed.Series{"AAA": series},
		DailyTrend: map[string]map[string]float64{"AAA": {}},
	}

	res, err := Run(context.Background(), defaultConfig("AAA"), inputs, &mockLogger{})
	require.NoError(t, err)
	assert.Empty(t, res.Signals)
	assert.Empty(t, res.Trades)
	assert.Len(t, res.EquityCurve, 6)
}

func TestRunWarmupRSISkipped(t *testing.T) {
	// NaN RSI on either side of a would-be crossing means no decision.
	series := buildSeries(t, "AAA",
		[]float64{100, 100, 101, 101},
		[]float64{100.5, 100.5, 101.5, 101.5},
		[]float64{math.NaN(), math.NaN(), 40, 50},
	)
	inputs := Inputs{
		Intraday:   map[string]*feed.Series{"AAA": series},
		DailyTrend: map[string]map[string]float64{"AAA": flatTrend(100)},
	}

	res, err := Run(context.Background(), defaultConfig("AAA"), inputs, &mockLogger{})
	require.NoError(t, err)
	assert.Empty(t, res.Signals)
	assert.Empty(t, res.Trades)
}

func TestRunTickerWithoutSeriesGetsBaseThreshold(t *testing.T) {
	series := buildSeries(t, "AAA",
		[]float64{100, 100},
		[]float64{100.5, 100.5},
		[]float64{50, 50},
	)
	inputs := Inputs{
		Intraday:   map[string]*feed.Series{"AAA": series},
		DailyTrend: map[string]map[string]float64{"AAA": flatTrend(100)},
	}

	cfg := defaultConfig("AAA", "ZZZ")
	res, err := Run(context.Background(), cfg, inputs, &mockLogger{})
	require.NoError(t, err)
	assert.Equal(t, cfg.BaseRSILevel, res.Thresholds["ZZZ"])
}
