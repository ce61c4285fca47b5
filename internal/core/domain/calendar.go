package domain

import "time"

// Clock supplies the current time to the services so day-boundary logic
// stays testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func SystemClock() Clock {
	return systemClock{}
}

// StartOfDay truncates t to local midnight in t's own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day. The
// comparison happens in b's location.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsYesterday reports whether t falls on the calendar day immediately
// before ref. Calendar arithmetic, not elapsed hours, so DST transitions
// do not shift the boundary.
func IsYesterday(t, ref time.Time) bool {
	return SameDay(t, StartOfDay(ref).AddDate(0, 0, -1))
}

// NextMidnight returns the upcoming local midnight after t.
func NextMidnight(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}
