package main

import (
	"context"
	"log" // standard log only for fatal errors before the logger is set up
	"os"
	"os/signal"
	"syscall"
	"time"

	"swingTraderBot/config"
	"swingTraderBot/internal/adapters/binanceclient"
	"swingTraderBot/internal/adapters/logger"
	"swingTraderBot/internal/adapters/telegram"
	"swingTraderBot/internal/marketcal"
	"swingTraderBot/internal/monitor"
	"swingTraderBot/internal/ports"
	"swingTraderBot/internal/scheduler"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.New(logger.ParseLevel(cfg.LogLevel))
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel})

	// 3. Initialize Market Data Provider
	provider, err := binanceclient.New(binanceclient.Config{
		APIKey:    cfg.BinanceAPIKey,
		SecretKey: cfg.BinanceSecret,
		Logger:    appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize market data provider")
		log.Fatalf("FATAL: Failed to initialize market data provider: %v", err)
	}

	// 4. Initialize Notifier (optional: scanner logs signals without it)
	var notifier ports.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		tg, err := telegram.New(telegram.Config{
			BotToken: cfg.TelegramToken,
			ChatID:   cfg.TelegramChatID,
			Logger:   appLogger,
		})
		if err != nil {
			appLogger.Error(ctx, err, "FATAL: Failed to initialize Telegram notifier")
			log.Fatalf("FATAL: Failed to initialize Telegram notifier: %v", err)
		}
		notifier = tg
	} else {
		appLogger.Warn(ctx, "Telegram not configured, signals will only be logged")
	}

	// 5. Initialize Scanner
	scanner, err := monitor.New(monitor.Config{
		Watchlist:      cfg.Strategy.Watchlist,
		Interval:       cfg.Strategy.IntradayInterval,
		TrendEMAPeriod: cfg.Strategy.TrendEMAPeriod,
		RSIPeriod:      cfg.Strategy.RSIPeriod,
		RSIOversold:    cfg.Strategy.RSIOversold,
		RSIOverbought:  cfg.Strategy.RSIOverbought,
		MACDFast:       cfg.Strategy.MACDFast,
		MACDSlow:       cfg.Strategy.MACDSlow,
		MACDSignal:     cfg.Strategy.MACDSignal,
	}, provider, notifier, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize scanner")
		log.Fatalf("FATAL: Failed to initialize scanner: %v", err)
	}

	// 6. Market hours gate: outside trading hours run one scan and exit,
	// during hours run on the configured schedule until interrupted.
	cal, err := marketcal.New()
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to load market calendar")
		log.Fatalf("FATAL: Failed to load market calendar: %v", err)
	}

	if !cal.IsOpen(time.Now()) {
		appLogger.Info(ctx, "Market is closed, running a single scan")
		if err := scanner.Run(ctx); err != nil {
			appLogger.Error(ctx, err, "Scan failed")
			os.Exit(1)
		}
		return
	}

	sched := scheduler.New(appLogger)
	if err := sched.AddJob(ctx, cfg.Strategy.ScanSchedule, scanner); err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to schedule scan job")
		log.Fatalf("FATAL: Failed to schedule scan job: %v", err)
	}
	sched.Start(ctx)
	appLogger.Info(ctx, "Scanner scheduled", map[string]interface{}{
		"schedule":  cfg.Strategy.ScanSchedule,
		"watchlist": len(cfg.Strategy.Watchlist),
	})

	// Run the first scan immediately rather than waiting a full interval.
	if err := scanner.Run(ctx); err != nil {
		appLogger.Error(ctx, err, "Initial scan failed")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	appLogger.Info(ctx, "Shutting down", map[string]interface{}{"signal": sig.String()})
	sched.Stop(ctx)
}
