// Package analytics holds the pure progress engines: streak bookkeeping,
// milestones, achievements, usage aggregation, emotional trends, pattern
// detection and insight generation. Nothing in this package performs I/O;
// callers load data through repositories and pass it in.
package analytics

import (
	"errors"
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
)

// DefaultMaxGracePerMonth is the number of grace periods a user may spend per
// calendar month.
const DefaultMaxGracePerMonth = 2

// GraceGapDays is the only gap a grace period can bridge: one missed day.
const GraceGapDays = 2

var (
	// ErrFutureDate is returned when an activity is dated after today.
	ErrFutureDate = errors.New("activity date is in the future")

	// ErrBackdatedActivity is returned for a new activity earlier than the
	// last recorded activity date.
	ErrBackdatedActivity = errors.New("activity date is earlier than the last recorded activity")

	// ErrNoGraceGap is returned when a grace period has nothing to bridge.
	ErrNoGraceGap = errors.New("no single missed day to bridge")

	// ErrGraceExhausted is returned when no grace periods remain this month.
	ErrGraceExhausted = errors.New("no grace periods remaining this month")
)

// StreakPolicy carries the tunables of the streak algorithm.
type StreakPolicy struct {
	MaxGracePerMonth int
}

// DefaultStreakPolicy returns the policy with the default grace allowance.
func DefaultStreakPolicy() StreakPolicy {
	return StreakPolicy{MaxGracePerMonth: DefaultMaxGracePerMonth}
}

func (p StreakPolicy) maxGrace() int {
	if p.MaxGracePerMonth < 0 {
		return 0
	}
	return p.MaxGracePerMonth
}

// GraceUsed returns the grace periods counted against the month of day.
// Once day reaches the stored reset date the counter is treated as zero.
func (p StreakPolicy) GraceUsed(s *models.StreakState, day time.Time) int {
	if s == nil {
		return 0
	}
	if s.GracePeriodResetDate != nil && !calendar.Civil(day).Before(*s.GracePeriodResetDate) {
		return 0
	}
	return s.GracePeriodUsedCount
}

// GraceRemaining returns how many grace periods are left for day's month.
func (p StreakPolicy) GraceRemaining(s *models.StreakState, day time.Time) int {
	remaining := p.maxGrace() - p.GraceUsed(s, day)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GapDays returns the number of days between the last activity and day, or
// zero when the state has no activity yet.
func GapDays(s *models.StreakState, day time.Time) int {
	if s == nil || s.LastActivityDate == nil {
		return 0
	}
	return calendar.DaysBetween(*s.LastActivityDate, day)
}

// ApplyActivity records an activity on day against s in place. day and today
// are interpreted as calendar dates in the caller's location. A repeat of an
// already recorded day leaves s untouched and reports SameDay.
func (p StreakPolicy) ApplyActivity(s *models.StreakState, day, today time.Time, useGrace bool) (models.StreakOutcome, error) {
	var out models.StreakOutcome

	d := calendar.Civil(day)
	if d.After(calendar.Civil(today)) {
		return out, ErrFutureDate
	}

	key := calendar.DayKey(d)
	if s.HasActivityOn(key) {
		out.SameDay = true
		return out, nil
	}

	switch {
	case s.LastActivityDate == nil:
		s.CurrentStreak = 1
	default:
		gap := calendar.DaysBetween(*s.LastActivityDate, d)
		switch {
		case gap < 0:
			return out, ErrBackdatedActivity
		case gap == 0:
			// Last date set but missing from the set; treat as a repeat.
			out.SameDay = true
			return out, nil
		case gap == 1:
			s.CurrentStreak++
			out.Contiguous = true
			// An explicit grace request on a contiguous day records it as a
			// grace-covered day when allowance remains.
			if useGrace && p.GraceRemaining(s, d) > 0 {
				p.consumeGrace(s, d)
				out.GraceConsumed = true
			}
		case gap == GraceGapDays && useGrace && p.GraceRemaining(s, d) > 0:
			p.consumeGrace(s, d)
			s.CurrentStreak++
			out.Contiguous = true
			out.GraceConsumed = true
		default:
			if useGrace && gap == GraceGapDays {
				out.GraceExhausted = true
			}
			s.CurrentStreak = 1
			out.Reset = true
		}
	}

	if s.LastActivityDate == nil || d.After(*s.LastActivityDate) {
		last := d
		s.LastActivityDate = &last
	}
	s.AddActivityDate(key)
	s.TotalDaysActive = len(s.ActivityDates)
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	out.Changed = true
	return out, nil
}

// UseGrace bridges a single missed day ending at day. Unlike ApplyActivity it
// fails instead of resetting: ErrNoGraceGap when there is no one-day gap and
// ErrGraceExhausted when the month's allowance is spent.
func (p StreakPolicy) UseGrace(s *models.StreakState, day, today time.Time) (models.StreakOutcome, error) {
	d := calendar.Civil(day)
	if d.After(calendar.Civil(today)) {
		return models.StreakOutcome{}, ErrFutureDate
	}
	if s.LastActivityDate == nil || GapDays(s, d) != GraceGapDays || s.HasActivityOn(calendar.DayKey(d)) {
		return models.StreakOutcome{}, ErrNoGraceGap
	}
	if p.GraceRemaining(s, d) == 0 {
		return models.StreakOutcome{GraceExhausted: true}, ErrGraceExhausted
	}
	return p.ApplyActivity(s, d, today, true)
}

func (p StreakPolicy) consumeGrace(s *models.StreakState, d time.Time) {
	s.GracePeriodUsedCount = p.GraceUsed(s, d) + 1
	reset := calendar.FirstOfNextMonth(d)
	s.GracePeriodResetDate = &reset
}

// ResetStreak zeroes the current streak, keeping history, longest streak and
// grace counters.
func ResetStreak(s *models.StreakState) bool {
	if s.CurrentStreak == 0 {
		return false
	}
	s.CurrentStreak = 0
	return true
}
