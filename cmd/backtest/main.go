package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"swingTraderBot/config"
	"swingTraderBot/internal/adapters/logger"
	"swingTraderBot/internal/adapters/sqlite"
	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/reports"
	"swingTraderBot/internal/strategy/analytics"
	"swingTraderBot/internal/strategy/backtesting"
	"swingTraderBot/internal/strategy/feed"
	"swingTraderBot/internal/strategy/optimization"
)

func main() {
	sweep := flag.Bool("sweep", false, "compare trend EMA candidate periods instead of a single run")
	runID := flag.String("run-id", time.Now().Format("20060102-150405"), "identifier for persisted results")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.New(logger.ParseLevel(cfg.LogLevel))
	ctx := context.Background()

	// 2. Load bars from CSV for every watchlist ticker (intraday + daily)
	intradayBars := make(map[string][]*domain.Bar)
	dailyBars := make(map[string][]*domain.Bar)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var loadFailed bool

	for _, ticker := range cfg.Strategy.Watchlist {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()

			intraFile := filepath.Join(cfg.DataDir, fmt.Sprintf("%s_%s.csv", ticker, cfg.Strategy.IntradayInterval))
			intra, err := reports.ReadBarsCSV(intraFile)
			if err != nil {
				appLogger.Error(ctx, err, "Error loading intraday bars",
					map[string]interface{}{"ticker": ticker, "file": intraFile})
				mu.Lock()
				loadFailed = true
				mu.Unlock()
				return
			}

			dailyFile := filepath.Join(cfg.DataDir, fmt.Sprintf("%s_1d.csv", ticker))
			daily, err := reports.ReadBarsCSV(dailyFile)
			if err != nil {
				appLogger.Error(ctx, err, "Error loading daily bars",
					map[string]interface{}{"ticker": ticker, "file": dailyFile})
				mu.Lock()
				loadFailed = true
				mu.Unlock()
				return
			}

			mu.Lock()
			intradayBars[ticker] = intra
			dailyBars[ticker] = daily
			mu.Unlock()

			appLogger.Info(ctx, "Loaded bars", map[string]interface{}{
				"ticker":   ticker,
				"intraday": len(intra),
				"daily":    len(daily),
			})
		}(ticker)
	}
	wg.Wait()

	if loadFailed {
		appLogger.Error(ctx, fmt.Errorf("missing bar data"), "Aborting: not all tickers could be loaded")
		os.Exit(1)
	}

	// 3. Build per-ticker indicator series
	feedCfg := feed.Config{RSIPeriod: cfg.Strategy.RSIPeriod, ATRPeriod: cfg.Strategy.ATRPeriod}
	intraday := make(map[string]*feed.Series, len(cfg.Strategy.Watchlist))
	for _, ticker := range cfg.Strategy.Watchlist {
		series, err := feed.BuildIntraday(ticker, intradayBars[ticker], feedCfg)
		if err != nil {
			appLogger.Error(ctx, err, "Failed to build intraday series",
				map[string]interface{}{"ticker": ticker})
			os.Exit(1)
		}
		intraday[ticker] = series
	}

	simCfg := backtesting.Config{
		Tickers:             cfg.Strategy.Watchlist,
		InitialCash:         cfg.Strategy.InitialCash,
		NumSlots:            cfg.Strategy.NumSlots,
		ATRMultiplier:       cfg.Strategy.ATRMultiplier,
		BaseRSILevel:        cfg.Strategy.RSIBaseLevel,
		ThresholdPercentile: cfg.Strategy.ThresholdPercentile,
	}

	// 4. Run: either the EMA period sweep or a single full simulation
	if *sweep {
		runSweep(ctx, cfg, simCfg, intraday, dailyBars, appLogger)
		return
	}

	trend := make(map[string]map[string]float64, len(cfg.Strategy.Watchlist))
	for _, ticker := range cfg.Strategy.Watchlist {
		t, err := feed.BuildDailyTrend(dailyBars[ticker], cfg.Strategy.TrendEMAPeriod)
		if err != nil {
			appLogger.Error(ctx, err, "Failed to build daily trend",
				map[string]interface{}{"ticker": ticker})
			os.Exit(1)
		}
		trend[ticker] = t
	}

	result, err := backtesting.Run(ctx, simCfg, backtesting.Inputs{Intraday: intraday, DailyTrend: trend}, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "Simulation failed")
		os.Exit(1)
	}

	// 5. Report
	metrics := analytics.AnalyzePerformance(result.Trades, simCfg.InitialCash)
	signalStats := analytics.AnalyzeSignals(result.Signals)
	printSummary(simCfg, result, metrics, signalStats)

	if err := writeReports(cfg.ReportDir, *runID, result); err != nil {
		appLogger.Error(ctx, err, "Failed to write CSV reports")
		os.Exit(1)
	}

	// 6. Persist to sqlite keyed by run ID
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		appLogger.Error(ctx, err, "Failed to open results database")
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.SaveTrades(ctx, *runID, result.Trades); err != nil {
		appLogger.Error(ctx, err, "Failed to persist trades", map[string]interface{}{"runID": *runID})
		os.Exit(1)
	}
	if err := repo.SaveSignals(ctx, *runID, result.Signals); err != nil {
		appLogger.Error(ctx, err, "Failed to persist signals", map[string]interface{}{"runID": *runID})
		os.Exit(1)
	}

	appLogger.Info(ctx, "Run complete", map[string]interface{}{
		"runID":      *runID,
		"trades":     len(result.Trades),
		"signals":    len(result.Signals),
		"finalValue": result.FinalValue,
	})
}

func runSweep(ctx context.Context, cfg *config.Config, simCfg backtesting.Config, intraday map[string]*feed.Series, daily map[string][]*domain.Bar, appLogger *logger.ZeroLogger) {
	sweepCfg := optimization.SweepConfig{
		Periods: cfg.Strategy.EMACandidates,
		Base:    simCfg,
	}
	results, err := optimization.SweepTrendPeriods(ctx, sweepCfg, intraday, daily, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "Sweep failed")
		os.Exit(1)
	}

	fmt.Println("\n========== TREND EMA PERIOD SWEEP ==========")
	fmt.Printf("%-8s %-8s %-10s %-10s %-10s %-10s %-8s\n",
		"EMA", "Trades", "Win Rate", "Avg Ret", "ROI", "Max DD", "Score")
	for _, r := range results {
		fmt.Printf("%-8d %-8d %-10.2f %-10.2f %-10.2f %-10.2f %-8.2f\n",
			r.EMAPeriod,
			r.Metrics.TotalTrades,
			r.Metrics.WinRate*100,
			r.Metrics.AverageReturn*100,
			r.Metrics.ReturnOnInvestment*100,
			r.Metrics.MaxDrawdown*100,
			r.Score)
	}
	if len(results) > 0 {
		fmt.Printf("\nBest period: %d (score %.2f)\n", results[0].EMAPeriod, results[0].Score)
	}
}

func printSummary(cfg backtesting.Config, result *backtesting.Result, m *analytics.PerformanceMetrics, s *analytics.SignalStats) {
	fmt.Println("\n========== SIMULATION SUMMARY ==========")
	fmt.Printf("Initial Cash:     $%.2f (%d slots of $%.2f)\n",
		cfg.InitialCash, cfg.NumSlots, cfg.InitialCash/float64(cfg.NumSlots))
	fmt.Printf("Final Value:      $%.2f\n", result.FinalValue)
	fmt.Printf("Total Profit:     $%.2f (ROI %.2f%%)\n", m.TotalProfit, m.ReturnOnInvestment*100)
	fmt.Printf("Trades:           %d (W %d / L %d, win rate %.2f%%)\n",
		m.TotalTrades, m.WinningTrades, m.LosingTrades, m.WinRate*100)
	fmt.Printf("Avg Win/Loss:     $%.2f / $%.2f\n", m.AverageWin, m.AverageLoss)
	fmt.Printf("Profit Factor:    %.2f\n", m.ProfitFactor)
	fmt.Printf("Expectancy:       $%.2f\n", m.Expectancy)
	fmt.Printf("Max Drawdown:     %.2f%%\n", m.MaxDrawdown*100)
	fmt.Printf("Avg Holding Time: %s\n", m.AverageHoldingTime)

	fmt.Println("\n--- Entry Thresholds (adaptive RSI) ---")
	for ticker, level := range result.Thresholds {
		fmt.Printf("  %-8s %.2f\n", ticker, level)
	}

	fmt.Println("\n--- Signal Audit ---")
	fmt.Printf("Total Crossings:  %d\n", s.Total)
	fmt.Printf("Actionable:       %d\n", s.Actionable)
	fmt.Printf("Lost to Trend:    %d\n", s.LostToTrend)
	fmt.Printf("Lost to Capacity: %d\n", s.LostToCapacity)

	if len(m.MonthlyReturns) > 0 {
		fmt.Println("\n--- Monthly Returns ---")
		for _, mr := range m.GetMonthlyReturns() {
			fmt.Printf("  %s  $%.2f\n", mr.Month.Format("2006-01"), mr.Return)
		}
	}
	fmt.Println("========================================")
}

func writeReports(dir, runID string, result *backtesting.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := reports.WriteTradesCSV(result.Trades, filepath.Join(dir, fmt.Sprintf("trades_%s.csv", runID))); err != nil {
		return err
	}
	if err := reports.WriteSignalsCSV(result.Signals, filepath.Join(dir, fmt.Sprintf("signals_%s.csv", runID))); err != nil {
		return err
	}
	return reports.WriteEquityCSV(result.EquityCurve, filepath.Join(dir, fmt.Sprintf("equity_%s.csv", runID)))
}
