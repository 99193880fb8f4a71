package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"swingTraderBot/config"
	"swingTraderBot/internal/adapters/binanceclient"
	"swingTraderBot/internal/adapters/logger"
	"swingTraderBot/internal/reports"
)

func main() {
	ticker := flag.String("ticker", "", "ticker symbol to fetch (required)")
	interval := flag.String("interval", "15m", "bar interval, e.g. 15m or 1d")
	days := flag.Int("days", 90, "how many days back to fetch")
	out := flag.String("out", "", "output CSV path (default DATA_DIR/<ticker>_<interval>.csv)")
	flag.Parse()

	if *ticker == "" {
		flag.Usage()
		os.Exit(2)
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.New(logger.ParseLevel(cfg.LogLevel))
	ctx := context.Background()

	// 3. Initialize Market Data Provider
	client, err := binanceclient.New(binanceclient.Config{
		APIKey:    cfg.BinanceAPIKey,
		SecretKey: cfg.BinanceSecret,
		Logger:    appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize market data provider")
		log.Fatalf("FATAL: Failed to initialize market data provider: %v", err)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -*days)

	appLogger.Info(ctx, "Fetching bars", map[string]interface{}{
		"ticker":   *ticker,
		"interval": *interval,
		"start":    start.Format("2006-01-02"),
		"end":      end.Format("2006-01-02"),
	})
	bars, err := client.GetBarsRange(ctx, *ticker, *interval, start, end)
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching bars")
		log.Fatalf("Error fetching bars: %v", err)
	}
	appLogger.Info(ctx, "Fetched bars", map[string]interface{}{"count": len(bars)})

	filename := *out
	if filename == "" {
		filename = filepath.Join(cfg.DataDir, fmt.Sprintf("%s_%s.csv", *ticker, *interval))
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		log.Fatalf("Error creating output directory: %v", err)
	}
	if err := reports.WriteBarsCSV(bars, filename); err != nil {
		appLogger.Error(ctx, err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "Saved bars", map[string]interface{}{"filename": filename})
}
