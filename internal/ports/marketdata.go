package ports

import (
	"context"
	"time"

	"swingTraderBot/internal/domain"
)

// MarketDataProvider defines the interface for retrieving historical price bars.
type MarketDataProvider interface {
	// GetBars fetches the most recent bars for a ticker, up to limit.
	GetBars(ctx context.Context, ticker, interval string, limit int) ([]*domain.Bar, error)
	// GetBarsRange fetches all bars for a ticker/interval between start and end time.
	GetBarsRange(ctx context.Context, ticker, interval string, start, end time.Time) ([]*domain.Bar, error)
}

// Notifier delivers formatted alert messages to an external chat service.
// Delivery failures are logged by implementations, never escalated.
type Notifier interface {
	Send(ctx context.Context, message string) error
}
