package optimization

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/ports"
	"swingTraderBot/internal/strategy/analytics"
	"swingTraderBot/internal/strategy/backtesting"
	"swingTraderBot/internal/strategy/feed"
)

// SweepConfig holds configuration for a trend-period sweep.
type SweepConfig struct {
	Periods []int // candidate daily trend EMA periods
	Base    backtesting.Config
	Score   func(*analytics.PerformanceMetrics) float64
}

// SweepResult holds the outcome of one candidate period's full simulation.
type SweepResult struct {
	EMAPeriod int
	Metrics   *analytics.PerformanceMetrics
	Signals   *analytics.SignalStats
	Score     float64
}

// SweepTrendPeriods runs the complete multi-ticker simulation once per
// candidate trend EMA period and ranks the candidates by score. Candidates
// run concurrently; each gets its own ledger and trend maps, so they share
// nothing but the read-only intraday series.
func SweepTrendPeriods(ctx context.Context, cfg SweepConfig, intraday map[string]*feed.Series, daily map[string][]*domain.Bar, log ports.Logger) ([]SweepResult, error) {
	if len(cfg.Periods) == 0 {
		return nil, fmt.Errorf("no candidate periods")
	}
	score := cfg.Score
	if score == nil {
		score = DefaultScoreFunction
	}

	resultChan := make(chan SweepResult, len(cfg.Periods))
	var wg sync.WaitGroup

	for _, period := range cfg.Periods {
		wg.Add(1)
		go func(period int) {
			defer wg.Done()

			trend := make(map[string]map[string]float64, len(daily))
			for ticker, bars := range daily {
				m, err := feed.BuildDailyTrend(bars, period)
				if err != nil {
					log.Warn(ctx, "Skipping ticker in sweep candidate", map[string]interface{}{
						"ticker": ticker, "emaPeriod": period, "reason": err.Error(),
					})
					continue
				}
				trend[ticker] = m
			}

			res, err := backtesting.Run(ctx, cfg.Base, backtesting.Inputs{
				Intraday:   intraday,
				DailyTrend: trend,
			}, log)
			if err != nil {
				log.Error(ctx, err, "Sweep candidate failed", map[string]interface{}{"emaPeriod": period})
				return
			}

			metrics := analytics.AnalyzePerformance(res.Trades, cfg.Base.InitialCash)
			resultChan <- SweepResult{
				EMAPeriod: period,
				Metrics:   metrics,
				Signals:   analytics.AnalyzeSignals(res.Signals),
				Score:     score(metrics),
			}
		}(period)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]SweepResult, 0, len(cfg.Periods))
	for result := range resultChan {
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// DefaultScoreFunction combines win rate, average per-trade return, and
// overall return into a single ranking score.
func DefaultScoreFunction(metrics *analytics.PerformanceMetrics) float64 {
	if metrics.TotalTrades == 0 {
		return 0
	}
	score := 0.0
	score += metrics.WinRate * 0.4
	score += metrics.AverageReturn * 10 * 0.3
	score += metrics.ReturnOnInvestment * 10 * 0.3
	return score
}
