package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.ReportRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/swing_trader.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1) // SQLite handles concurrency internally, but Go driver benefits from limiting connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS closed_trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		ticker TEXT NOT NULL,
		buy_price REAL NOT NULL,
		buy_time TIMESTAMP NOT NULL,
		close_price REAL NOT NULL,
		close_time TIMESTAMP NOT NULL,
		entry_cost REAL NOT NULL,
		exit_value REAL NOT NULL,
		pnl_percent REAL NOT NULL,
		pnl_cash REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS signal_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		time TIMESTAMP NOT NULL,
		ticker TEXT NOT NULL,
		price REAL NOT NULL,
		trend_ref REAL NOT NULL,
		rsi REAL NOT NULL,
		trend_passed INTEGER NOT NULL,
		slot_available INTEGER NOT NULL
	);
	-- Add indexes for common lookups
	CREATE INDEX IF NOT EXISTS idx_closed_trades_run_close_time ON closed_trades (run_id, close_time);
	CREATE INDEX IF NOT EXISTS idx_signal_events_run_time ON signal_events (run_id, time);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- ReportRepository Implementation ---

// SaveTrades stores the closed trades of one simulation run in a single transaction.
func (r *Repository) SaveTrades(ctx context.Context, runID string, trades []domain.ClosedTrade) error {
	const query = `
	INSERT INTO closed_trades (run_id, ticker, buy_price, buy_time, close_price, close_time, entry_cost, exit_value, pnl_percent, pnl_cash)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, tr := range trades {
		if _, err := tx.ExecContext(ctx, query,
			runID, tr.Ticker, tr.BuyPrice, tr.BuyTime, tr.ClosePrice, tr.CloseTime,
			tr.EntryCost, tr.ExitValue, tr.PnLPercent, tr.PnLCash); err != nil {
			return fmt.Errorf("failed to insert trade for ticker %s: %w", tr.Ticker, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trades: %w", err)
	}
	r.logger.Debug(ctx, "Closed trades persisted", map[string]interface{}{"runID": runID, "count": len(trades)})
	return nil
}

// SaveSignals stores the signal audit log of one simulation run.
func (r *Repository) SaveSignals(ctx context.Context, runID string, signals []domain.SignalEvent) error {
	const query = `
	INSERT INTO signal_events (run_id, time, ticker, price, trend_ref, rsi, trend_passed, slot_available)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, sig := range signals {
		if _, err := tx.ExecContext(ctx, query,
			runID, sig.Time, sig.Ticker, sig.Price, sig.TrendRef, sig.RSI,
			sig.TrendPassed, sig.SlotAvailable); err != nil {
			return fmt.Errorf("failed to insert signal for ticker %s: %w", sig.Ticker, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit signals: %w", err)
	}
	r.logger.Debug(ctx, "Signal events persisted", map[string]interface{}{"runID": runID, "count": len(signals)})
	return nil
}

// FindTrades retrieves the closed trades of a run, ordered by close time.
func (r *Repository) FindTrades(ctx context.Context, runID string) ([]domain.ClosedTrade, error) {
	const query = `
	SELECT ticker, buy_price, buy_time, close_price, close_time, entry_cost, exit_value, pnl_percent, pnl_cash
	FROM closed_trades
	WHERE run_id = ?
	ORDER BY close_time ASC`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for run %s: %w", runID, err)
	}
	defer rows.Close()

	var trades []domain.ClosedTrade
	for rows.Next() {
		var tr domain.ClosedTrade
		if err := rows.Scan(&tr.Ticker, &tr.BuyPrice, &tr.BuyTime, &tr.ClosePrice, &tr.CloseTime,
			&tr.EntryCost, &tr.ExitValue, &tr.PnLPercent, &tr.PnLCash); err != nil {
			return nil, fmt.Errorf("failed to scan trade row: %w", err)
		}
		trades = append(trades, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// FindSignals retrieves the signal events of a run, ordered by time.
func (r *Repository) FindSignals(ctx context.Context, runID string) ([]domain.SignalEvent, error) {
	const query = `
	SELECT time, ticker, price, trend_ref, rsi, trend_passed, slot_available
	FROM signal_events
	WHERE run_id = ?
	ORDER BY time ASC`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals for run %s: %w", runID, err)
	}
	defer rows.Close()

	var signals []domain.SignalEvent
	for rows.Next() {
		var sig domain.SignalEvent
		if err := rows.Scan(&sig.Time, &sig.Ticker, &sig.Price, &sig.TrendRef, &sig.RSI,
			&sig.TrendPassed, &sig.SlotAvailable); err != nil {
			return nil, fmt.Errorf("failed to scan signal row: %w", err)
		}
		signals = append(signals, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signal rows: %w", err)
	}
	return signals, nil
}

var _ ports.ReportRepository = (*Repository)(nil)
