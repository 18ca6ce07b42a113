// Package clock provides wall-clock access and calendar-date arithmetic in a
// learner's timezone. Dates are carried as "YYYY-MM-DD" strings.
package clock

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used throughout practix.
const DateLayout = "2006-01-02"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System is the real wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed is a settable clock for tests and replay tools.
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time { return f.T }

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) { f.T = f.T.Add(d) }

// LoadLocation resolves a timezone name, falling back to fallback (and then
// UTC) when tz is empty or unknown.
func LoadLocation(tz, fallback string) *time.Location {
	for _, name := range []string{tz, fallback} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.UTC
}

// ValidateTimezone reports whether tz names a zone in the tz database.
func ValidateTimezone(tz string) error {
	if tz == "" {
		return fmt.Errorf("timezone is empty")
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	return nil
}

// LocalDate returns the calendar date of t in loc.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// IsSameDay reports whether two calendar dates are equal. Empty dates never match.
func IsSameDay(a, b string) bool {
	return a != "" && a == b
}

// IsConsecutiveDay reports whether next is exactly one calendar day after prev.
func IsConsecutiveDay(prev, next string) bool {
	p, err := time.Parse(DateLayout, prev)
	if err != nil {
		return false
	}
	n, err := time.Parse(DateLayout, next)
	if err != nil {
		return false
	}
	return p.AddDate(0, 0, 1).Equal(n)
}
