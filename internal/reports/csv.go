// Package reports persists simulation output as delimited tabular files.
// Column orders are fixed; downstream tooling reads them positionally.
package reports

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"swingTraderBot/internal/domain"
)

// WriteTradesCSV writes the closed-trade table.
func WriteTradesCSV(trades []domain.ClosedTrade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"ticker", "buy_time", "buy_price", "close_time", "close_price", "entry_cost", "exit_value", "pnl_percent", "pnl_cash"})

	for _, tr := range trades {
		writer.Write([]string{
			tr.Ticker,
			tr.BuyTime.Format(time.RFC3339),
			formatFloat(tr.BuyPrice),
			tr.CloseTime.Format(time.RFC3339),
			formatFloat(tr.ClosePrice),
			formatFloat(tr.EntryCost),
			formatFloat(tr.ExitValue),
			formatFloat(tr.PnLPercent),
			formatFloat(tr.PnLCash),
		})
	}
	return writer.Error()
}

// WriteSignalsCSV writes the signal audit log.
func WriteSignalsCSV(signals []domain.SignalEvent, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"time", "ticker", "price", "trend_ref", "rsi", "trend_passed", "slot_available"})

	for _, sig := range signals {
		writer.Write([]string{
			sig.Time.Format(time.RFC3339),
			sig.Ticker,
			formatFloat(sig.Price),
			formatFloat(sig.TrendRef),
			formatFloat(sig.RSI),
			strconv.FormatBool(sig.TrendPassed),
			strconv.FormatBool(sig.SlotAvailable),
		})
	}
	return writer.Error()
}

// WriteEquityCSV writes the equity-over-time series.
func WriteEquityCSV(points []domain.EquityPoint, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"time", "value"})

	for _, p := range points {
		writer.Write([]string{p.Time.Format(time.RFC3339), formatFloat(p.Value)})
	}
	return writer.Error()
}

// WriteBarsCSV writes raw bars, for use as simulator input.
func WriteBarsCSV(bars []*domain.Bar, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"time", "ticker", "interval", "open", "high", "low", "close", "volume"})

	for _, b := range bars {
		writer.Write([]string{
			b.Time.Format(time.RFC3339),
			b.Ticker,
			b.Interval,
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
		})
	}
	return writer.Error()
}

// ReadBarsCSV reads bars previously written by WriteBarsCSV.
func ReadBarsCSV(filename string) ([]*domain.Bar, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s: empty file", filename)
	}

	bars := make([]*domain.Bar, 0, len(records)-1)
	for i, rec := range records[1:] { // skip header
		if len(rec) != 8 {
			return nil, fmt.Errorf("%s: row %d has %d columns, want 8", filename, i+2, len(rec))
		}
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: parsing time: %w", filename, i+2, err)
		}
		bar := &domain.Bar{Time: ts, Ticker: rec[1], Interval: rec[2]}
		for j, dst := range []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume} {
			v, err := strconv.ParseFloat(rec[3+j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d: parsing column %d: %w", filename, i+2, 3+j, err)
			}
			*dst = v
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
