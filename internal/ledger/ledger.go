package ledger

import (
	"math"
	"time"

	"swingTraderBot/internal/domain"
)

// Ledger owns the capital pool, the set of open positions, and the append-only
// histories of closed trades and observed signals for one simulation run.
//
// Capital is committed in fixed slots: slotSize is computed once from the
// initial pool, so an entry can never overdraw cash as long as callers respect
// the CanOpen precondition. The ledger is not safe for concurrent use; the
// simulation is single threaded and the ledger is its sole owner of cash and
// position state.
type Ledger struct {
	initialCash  float64
	currentCash  float64
	numSlots     int
	slotSize     float64
	positions    map[string]*domain.Position
	closedTrades []domain.ClosedTrade
	signalLog    []domain.SignalEvent
}

// New creates a ledger managing initialCash across numSlots concurrent positions.
func New(initialCash float64, numSlots int) *Ledger {
	return &Ledger{
		initialCash: initialCash,
		currentCash: initialCash,
		numSlots:    numSlots,
		slotSize:    initialCash / float64(numSlots),
		positions:   make(map[string]*domain.Position),
	}
}

// CanOpen reports whether a slot is free and the ticker is not already held.
// It is a mandatory precondition for Open, not an advisory check: Open does
// not re-enforce the capacity invariant itself.
func (l *Ledger) CanOpen(ticker string) bool {
	if len(l.positions) >= l.numSlots {
		return false
	}
	_, held := l.positions[ticker]
	return !held
}

// Open commits at most one slot of cash to a new position at the given price.
// The entry is sized to whole shares; a non-positive price or an entry that
// would round down to zero shares (price above slot size) is rejected and
// nothing changes. These are expected rejection paths, not errors.
func (l *Ledger) Open(ticker string, price, initialStop float64, t time.Time) bool {
	if price <= 0 {
		return false
	}
	shares := math.Floor(l.slotSize / price)
	if shares <= 0 {
		return false
	}

	cost := shares * price
	l.positions[ticker] = &domain.Position{
		Ticker:       ticker,
		BuyPrice:     price,
		Shares:       shares,
		TrailingStop: initialStop,
		EntryValue:   cost,
		EntryTime:    t,
	}
	l.currentCash -= cost
	return true
}

// UpdateTrailingStop raises the position's stop to candidateStop if that is
// higher. The stop never moves down. No-op when the ticker has no open position.
func (l *Ledger) UpdateTrailingStop(ticker string, candidateStop float64) {
	if pos, ok := l.positions[ticker]; ok {
		pos.TrailingStop = math.Max(pos.TrailingStop, candidateStop)
	}
}

// Close removes the ticker's open position, credits the proceeds back to cash,
// and appends the derived ClosedTrade. Returns false when no position is open
// for the ticker, mutating nothing.
func (l *Ledger) Close(ticker string, price float64, t time.Time) bool {
	pos, ok := l.positions[ticker]
	if !ok {
		return false
	}
	delete(l.positions, ticker)

	exitValue := pos.Shares * price
	l.currentCash += exitValue

	l.closedTrades = append(l.closedTrades, domain.ClosedTrade{
		Ticker:     ticker,
		BuyPrice:   pos.BuyPrice,
		BuyTime:    pos.EntryTime,
		ClosePrice: price,
		CloseTime:  t,
		EntryCost:  pos.EntryValue,
		ExitValue:  exitValue,
		PnLPercent: (price - pos.BuyPrice) / pos.BuyPrice,
		PnLCash:    exitValue - pos.EntryValue,
	})
	return true
}

// TotalValue returns current cash plus the mark-to-market value of open
// positions. A position whose ticker is absent from currentPrices is valued
// at its buy price: a missing live price means "no unrealized change", not
// zero value.
func (l *Ledger) TotalValue(currentPrices map[string]float64) float64 {
	total := l.currentCash
	for ticker, pos := range l.positions {
		price, ok := currentPrices[ticker]
		if !ok {
			price = pos.BuyPrice
		}
		total += pos.Shares * price
	}
	return total
}

// RecordSignal appends one entry-trigger firing to the audit log.
func (l *Ledger) RecordSignal(ev domain.SignalEvent) {
	l.signalLog = append(l.signalLog, ev)
}

// Position returns the open position for a ticker, if any.
func (l *Ledger) Position(ticker string) (*domain.Position, bool) {
	pos, ok := l.positions[ticker]
	return pos, ok
}

// OpenCount returns the number of currently open positions.
func (l *Ledger) OpenCount() int {
	return len(l.positions)
}

// CurrentCash returns the uncommitted cash in the pool.
func (l *Ledger) CurrentCash() float64 {
	return l.currentCash
}

// InitialCash returns the starting size of the capital pool.
func (l *Ledger) InitialCash() float64 {
	return l.initialCash
}

// SlotSize returns the fixed cash amount allotted to each entry.
func (l *Ledger) SlotSize() float64 {
	return l.slotSize
}

// ClosedTrades returns the completed round trips in close order.
func (l *Ledger) ClosedTrades() []domain.ClosedTrade {
	return l.closedTrades
}

// Signals returns the signal audit log in firing order.
func (l *Ledger) Signals() []domain.SignalEvent {
	return l.signalLog
}
