package domain

import "time"

// SignalEvent is the audit record of one entry-trigger firing. It is appended
// on every upward threshold crossing, whether or not a position was opened,
// so lost signals can be attributed to trend vetoes versus capacity.
type SignalEvent struct {
	Time          time.Time // Bar timestamp at which the crossing fired
	Ticker        string    // Instrument identifier
	Price         float64   // Close price at the crossing
	TrendRef      float64   // Daily trend line value used for the trend filter
	RSI           float64   // Decision-indicator value at the crossing
	TrendPassed   bool      // True when price cleared the trend reference
	SlotAvailable bool      // True when a capital slot was free for the ticker
}

// EquityPoint is one sample of total portfolio value over time.
type EquityPoint struct {
	Time  time.Time
	Value float64
}
