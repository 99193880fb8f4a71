package ports

import (
	"context"

	"swingTraderBot/internal/domain"
)

// ReportRepository defines the interface for persisting simulation output.
type ReportRepository interface {
	// SaveTrades stores the closed trades of one simulation run.
	SaveTrades(ctx context.Context, runID string, trades []domain.ClosedTrade) error
	// SaveSignals stores the signal audit log of one simulation run.
	SaveSignals(ctx context.Context, runID string, signals []domain.SignalEvent) error
	// FindTrades retrieves the closed trades of a run, ordered by close time.
	FindTrades(ctx context.Context, runID string) ([]domain.ClosedTrade, error)
	// FindSignals retrieves the signal events of a run, ordered by time.
	FindSignals(ctx context.Context, runID string) ([]domain.SignalEvent, error)
}
