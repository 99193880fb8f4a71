package domain

import "time"

// Bar represents a single price bar for one ticker.
type Bar struct {
	Time     time.Time // Start time of the interval
	Ticker   string    // Instrument identifier (e.g., "NVDA", "ETHUSDT")
	Interval string    // Bar interval (e.g., "15m", "1d")
	Open     float64   // Opening price
	High     float64   // Highest price
	Low      float64   // Lowest price
	Close    float64   // Closing price
	Volume   float64   // Traded volume
}
