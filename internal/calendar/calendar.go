// Package calendar maps timestamps onto the day/week/month/year buckets and
// time-of-day slots used by the analytics engine. All functions are pure and
// operate on the calendar of the location carried by the time value, so
// callers convert to the user's location before bucketing.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical day key layout (ISO 8601 calendar date).
const DateLayout = "2006-01-02"

// Granularity selects the period a timestamp is bucketed into.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// Granularities lists every supported granularity, finest first.
var Granularities = []Granularity{Day, Week, Month, Year}

// ParseGranularity converts a request value into a Granularity.
// An empty string defaults to Week.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Week, nil
	case "day", "daily":
		return Day, nil
	case "week", "weekly":
		return Week, nil
	case "month", "monthly":
		return Month, nil
	case "year", "yearly":
		return Year, nil
	default:
		return "", fmt.Errorf("unknown period type %q", s)
	}
}

// DayKey returns the YYYY-MM-DD key for t.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ISOWeekKey returns the YYYY-Www key for t using ISO 8601 week numbering.
func ISOWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// MonthKey returns the YYYY-MM key for t.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// YearKey returns the YYYY key for t.
func YearKey(t time.Time) string {
	return t.Format("2006")
}

// PeriodKey returns the bucket key of t for the given granularity.
func PeriodKey(t time.Time, g Granularity) string {
	switch g {
	case Day:
		return DayKey(t)
	case Month:
		return MonthKey(t)
	case Year:
		return YearKey(t)
	default:
		return ISOWeekKey(t)
	}
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Civil returns t's calendar date as a UTC midnight value. Two timestamps on
// the same local day map to the same Civil value regardless of zone offsets.
func Civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD key into a civil date.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b, ignoring the
// time of day. It is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(Civil(b).Sub(Civil(a)).Hours() / 24)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DaysBetween(a, b) == 0
}

// FirstOfMonth returns the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// FirstOfNextMonth returns the first day of the month after t's month.
func FirstOfNextMonth(t time.Time) time.Time {
	return FirstOfMonth(t).AddDate(0, 1, 0)
}

// InWindow reports whether t lies within [start, end]. A zero bound is open.
func InWindow(t, start, end time.Time) bool {
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && t.After(end) {
		return false
	}
	return true
}
