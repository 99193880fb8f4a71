package domain

import "time"

// ClosedTrade is the immutable record of a completed round trip.
// Exactly one is appended per ledger close; it is never mutated afterward.
type ClosedTrade struct {
	Ticker     string    // Instrument identifier
	BuyPrice   float64   // Price per share at entry
	BuyTime    time.Time // Timestamp of entry
	ClosePrice float64   // Price per share at exit
	CloseTime  time.Time // Timestamp of exit
	EntryCost  float64   // Cash committed at entry
	ExitValue  float64   // Cash returned at exit
	PnLPercent float64   // (ClosePrice - BuyPrice) / BuyPrice
	PnLCash    float64   // ExitValue - EntryCost
}
