package domain

import "time"

// Position represents an open holding for one ticker. It is created by a
// successful ledger open, mutated only through the trailing-stop ratchet,
// and removed by close.
type Position struct {
	Ticker       string    // Instrument identifier; unique key in the open set
	BuyPrice     float64   // Price per share at entry
	Shares       float64   // Whole shares held, floor(slotSize / BuyPrice)
	TrailingStop float64   // Exit level; only ever ratchets upward
	EntryValue   float64   // Shares * BuyPrice, cash committed at entry
	EntryTime    time.Time // Timestamp of entry
}
