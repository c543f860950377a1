// Package biztime provides business timezone calculations.
// Storage and transport use UTC. The business timezone only decides where a
// calendar day, month or year begins and ends: tracking codes are numbered
// per business day and statistics are bucketed per business month.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTimezone is the default business timezone.
const DefaultTimezone = "Asia/Manila"

var (
	mu          sync.RWMutex
	bizLocation *time.Location
)

// Init sets the business timezone. An empty tz selects DefaultTimezone.
func Init(tz string) error {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("load business timezone %q: %w", tz, err)
	}
	mu.Lock()
	bizLocation = loc
	mu.Unlock()
	return nil
}

// MustInit initializes the business timezone and panics on error.
func MustInit(tz string) {
	if err := Init(tz); err != nil {
		panic(err)
	}
}

// Location returns the business timezone, initializing the default on first use.
func Location() *time.Location {
	mu.RLock()
	loc := bizLocation
	mu.RUnlock()
	if loc != nil {
		return loc
	}
	MustInit("")
	return Location()
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// DayStamp formats t as YYYYMMDD in the business timezone.
func DayStamp(t time.Time) string {
	return t.In(Location()).Format("20060102")
}

// StartOfDayUTC returns business-day midnight for t, in UTC.
func StartOfDayUTC(t time.Time) time.Time {
	b := t.In(Location())
	return time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, Location()).UTC()
}

// EndOfDayUTC returns the last instant of the business day containing t, in UTC.
func EndOfDayUTC(t time.Time) time.Time {
	b := t.In(Location())
	return time.Date(b.Year(), b.Month(), b.Day(), 23, 59, 59, 999999999, Location()).UTC()
}

// StartOfMonthUTC returns the start of month in business timezone, converted to UTC.
func StartOfMonthUTC(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, Location()).UTC()
}

// EndOfMonthUTC returns the end of month in business timezone, converted to UTC.
func EndOfMonthUTC(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, Location()).Add(-time.Nanosecond).UTC()
}

// Year returns the business-timezone year of t.
func Year(t time.Time) int {
	return t.In(Location()).Year()
}

// ParseDateInBizTimezone parses YYYY-MM-DD as business midnight and returns it in UTC.
func ParseDateInBizTimezone(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", dateStr, Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q: %w", dateStr, err)
	}
	return t.UTC(), nil
}

// FormatInBizTimezone formats a UTC time as a string in business timezone.
func FormatInBizTimezone(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}
