package analytics

import (
	"sort"
	"time"

	"swingTraderBot/internal/domain"
)

// PerformanceMetrics holds aggregate performance metrics for a simulation run.
type PerformanceMetrics struct {
	TotalTrades        int
	WinningTrades      int
	LosingTrades       int
	WinRate            float64
	TotalProfit        float64
	AverageWin         float64
	AverageLoss        float64
	AverageReturn      float64 // mean per-trade percentage PnL
	ProfitFactor       float64
	MaxDrawdown        float64
	FinalBalance       float64
	ReturnOnInvestment float64
	Expectancy         float64
	AverageHoldingTime time.Duration
	MonthlyReturns     map[string]float64
}

// SignalStats summarizes the signal audit log: how many triggers fired and
// why the unacted ones were lost.
type SignalStats struct {
	Total          int
	Actionable     int // trend and capacity both clear (breakout veto may still have blocked entry)
	LostToTrend    int // trend veto: price below the reference line
	LostToCapacity int // trend passed but no slot was free
}

// AnalyzePerformance computes aggregate metrics from the closed trades of a run.
func AnalyzePerformance(trades []domain.ClosedTrade, initialBalance float64) *PerformanceMetrics {
	metrics := &PerformanceMetrics{
		FinalBalance:   initialBalance,
		MonthlyReturns: make(map[string]float64),
	}
	if len(trades) == 0 {
		return metrics
	}

	sorted := make([]domain.ClosedTrade, len(trades))
	copy(sorted, trades)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CloseTime.Before(sorted[j].CloseTime)
	})

	balance := initialBalance
	peak := initialBalance
	var totalReturn float64
	var totalHolding time.Duration

	for _, trade := range sorted {
		metrics.TotalTrades++
		if trade.PnLCash > 0 {
			metrics.WinningTrades++
			metrics.AverageWin = (metrics.AverageWin*float64(metrics.WinningTrades-1) + trade.PnLCash) / float64(metrics.WinningTrades)
		} else {
			metrics.LosingTrades++
			metrics.AverageLoss = (metrics.AverageLoss*float64(metrics.LosingTrades-1) + trade.PnLCash) / float64(metrics.LosingTrades)
		}

		balance += trade.PnLCash
		metrics.TotalProfit += trade.PnLCash
		totalReturn += trade.PnLPercent
		totalHolding += trade.CloseTime.Sub(trade.BuyTime)

		metrics.MonthlyReturns[trade.CloseTime.Format("2006-01")] += trade.PnLCash

		if balance > peak {
			peak = balance
		}
		drawdown := (peak - balance) / peak
		if drawdown > metrics.MaxDrawdown {
			metrics.MaxDrawdown = drawdown
		}
	}

	metrics.FinalBalance = balance
	metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.TotalTrades)
	metrics.AverageReturn = totalReturn / float64(metrics.TotalTrades)
	metrics.ReturnOnInvestment = (balance - initialBalance) / initialBalance
	metrics.AverageHoldingTime = totalHolding / time.Duration(metrics.TotalTrades)
	if metrics.AverageLoss != 0 {
		metrics.ProfitFactor = metrics.AverageWin / -metrics.AverageLoss
	}
	metrics.Expectancy = (metrics.WinRate * metrics.AverageWin) + ((1 - metrics.WinRate) * metrics.AverageLoss)

	return metrics
}

// AnalyzeSignals attributes every logged trigger to its outcome.
func AnalyzeSignals(signals []domain.SignalEvent) *SignalStats {
	stats := &SignalStats{Total: len(signals)}
	for _, sig := range signals {
		switch {
		case !sig.TrendPassed:
			stats.LostToTrend++
		case !sig.SlotAvailable:
			stats.LostToCapacity++
		default:
			stats.Actionable++
		}
	}
	return stats
}

// GetMonthlyReturns returns the monthly returns as a sorted slice.
func (m *PerformanceMetrics) GetMonthlyReturns() []MonthlyReturn {
	returns := make([]MonthlyReturn, 0, len(m.MonthlyReturns))
	for month, profit := range m.MonthlyReturns {
		date, _ := time.Parse("2006-01", month)
		returns = append(returns, MonthlyReturn{Month: date, Return: profit})
	}
	sort.Slice(returns, func(i, j int) bool {
		return returns[i].Month.Before(returns[j].Month)
	})
	return returns
}

// MonthlyReturn represents a monthly return value.
type MonthlyReturn struct {
	Month  time.Time
	Return float64
}
