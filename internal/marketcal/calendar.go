// Package marketcal gates the live scanner on US equity market hours.
package marketcal

import "time"

// Regular session bounds, minutes from midnight Eastern.
const (
	openMinute  = 9*60 + 30
	closeMinute = 16 * 60
)

// holidays lists full-day NYSE closures, keyed by Eastern calendar date.
var holidays = map[string]bool{
	"2025-01-01": true, // New Year's Day
	"2025-01-20": true, // Martin Luther King Jr. Day
	"2025-02-17": true, // Washington's Birthday
	"2025-04-18": true, // Good Friday
	"2025-05-26": true, // Memorial Day
	"2025-06-19": true, // Juneteenth
	"2025-07-04": true, // Independence Day
	"2025-09-01": true, // Labor Day
	"2025-11-27": true, // Thanksgiving Day
	"2025-12-25": true, // Christmas Day
	"2026-01-01": true,
	"2026-01-19": true,
	"2026-02-16": true,
	"2026-04-03": true,
	"2026-05-25": true,
	"2026-06-19": true,
	"2026-07-03": true, // Independence Day observed
	"2026-09-07": true,
	"2026-11-26": true,
	"2026-12-25": true,
}

// Calendar answers market-open queries for the regular NYSE session.
type Calendar struct {
	loc *time.Location
}

// New loads the Eastern time zone. Fails only when the zone database is absent.
func New() (*Calendar, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, err
	}
	return &Calendar{loc: loc}, nil
}

// IsOpen reports whether the regular session is trading at t. Weekends,
// listed holidays, and anything outside 09:30-16:00 Eastern are closed.
// Early-close half days are treated as full sessions.
func (c *Calendar) IsOpen(t time.Time) bool {
	et := t.In(c.loc)

	switch et.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	if holidays[et.Format("2006-01-02")] {
		return false
	}

	minute := et.Hour()*60 + et.Minute()
	return minute >= openMinute && minute < closeMinute
}
