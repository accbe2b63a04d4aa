package core

import (
	"errors"
	"time"
)

// Window is a concrete time range resolved from a named duration.
// Months records how many calendar months the name stood for, which the
// aggregation engine uses to emit exactly that many periods.
type Window struct {
	Start  time.Time
	End    time.Time
	Months int
}

// ErrUnknownWindow is returned for window names outside the supported
// set. Callers must pick an explicit default; nothing in this package
// falls back silently.
var ErrUnknownWindow = errors.New("unknown time window")

// DefaultWindowName is the documented fallback the HTTP boundary applies
// when the client sends no window at all.
const DefaultWindowName = "6months"

var windowMonths = map[string]int{
	"1month":   1,
	"3months":  3,
	"6months":  6,
	"12months": 12,
}

// ResolveWindow maps a named range to [now-N months, now]. The start
// keeps the day of month where possible and otherwise lands on the last
// valid day of the target month, conventional calendar arithmetic rather
// than fixed 30-day steps.
func ResolveWindow(name string, now time.Time) (Window, error) {
	months, ok := windowMonths[name]
	if !ok {
		return Window{}, ErrUnknownWindow
	}
	return Window{
		Start:  subMonthsClamped(now, months),
		End:    now,
		Months: months,
	}, nil
}

// Contains reports whether t falls inside the window, inclusive on both
// ends.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// subMonthsClamped steps back n calendar months, clamping the day to the
// length of the target month (May 31 minus 3 months is Feb 28/29, not
// Mar 2/3 as time.AddDate would normalize it).
func subMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	total := year*12 + int(month) - 1 - n
	ty, tm := total/12, time.Month(total%12+1)
	if last := daysInMonth(ty, tm); day > last {
		day = last
	}
	h, m, s := t.Clock()
	return time.Date(ty, tm, day, h, m, s, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
