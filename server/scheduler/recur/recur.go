// Package recur expands recurring event definitions into concrete
// occurrences within a query window.
//
// The grammar is deliberately reduced: NONE / DAILY / WEEKLY frequency, an
// optional weekday set, an optional list of wall-clock times, and an optional
// inclusive end date. Expansion is a pure function of (event, window, cap)
// with no retained state, so calls are safe to run concurrently.
package recur

import "time"

// Frequency represents the recurrence frequency.
type Frequency string

const (
	None   Frequency = "NONE"
	Daily  Frequency = "DAILY"
	Weekly Frequency = "WEEKLY"
)

// Weekday represents the day of week for recurrence, using the two-letter
// iCalendar codes.
type Weekday string

const (
	Sunday    Weekday = "SU"
	Monday    Weekday = "MO"
	Tuesday   Weekday = "TU"
	Wednesday Weekday = "WE"
	Thursday  Weekday = "TH"
	Friday    Weekday = "FR"
	Saturday  Weekday = "SA"
)

var weekdayByCode = map[Weekday]time.Weekday{
	Sunday:    time.Sunday,
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
}

var codeByWeekday = map[time.Weekday]Weekday{
	time.Sunday:    Sunday,
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
}

// TimeWeekday converts a weekday code to the time package representation.
// The second return value reports whether the code is well-formed.
func (w Weekday) TimeWeekday() (time.Weekday, bool) {
	d, ok := weekdayByCode[w]
	return d, ok
}

// WeekdayOf returns the weekday code for a time.Weekday.
func WeekdayOf(d time.Weekday) Weekday {
	return codeByWeekday[d]
}
