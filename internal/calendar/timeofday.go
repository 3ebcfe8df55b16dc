package calendar

import "time"

// TimeOfDay is a coarse slot of the local day.
type TimeOfDay string

const (
	Morning   TimeOfDay = "MORNING"   // 06:00-11:59
	Afternoon TimeOfDay = "AFTERNOON" // 12:00-17:59
	Evening   TimeOfDay = "EVENING"   // 18:00-23:59
	Night     TimeOfDay = "NIGHT"     // 00:00-05:59
)

// TimesOfDay lists the slots in day order starting from morning.
var TimesOfDay = []TimeOfDay{Morning, Afternoon, Evening, Night}

// TimeOfDayOf returns the slot that contains t's local hour.
func TimeOfDayOf(t time.Time) TimeOfDay {
	switch h := t.Hour(); {
	case h < 6:
		return Night
	case h < 12:
		return Morning
	case h < 18:
		return Afternoon
	default:
		return Evening
	}
}

// Label returns a lowercase human label for the slot.
func (t TimeOfDay) Label() string {
	switch t {
	case Morning:
		return "morning"
	case Afternoon:
		return "afternoon"
	case Evening:
		return "evening"
	case Night:
		return "night"
	default:
		return string(t)
	}
}

// Weekdays lists days starting Monday, matching ISO week order.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// DayOfWeek returns t's weekday in its own location.
func DayOfWeek(t time.Time) time.Weekday {
	return t.Weekday()
}

// WeekdayIndex returns the Monday-based index (0..6) of d.
func WeekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
