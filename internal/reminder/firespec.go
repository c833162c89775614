package reminder

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate is returned for appointment dates that are not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// FireSpec says when a schedule is due: either daily at a clock minute, or
// once at an absolute instant.
type FireSpec struct {
	Recurring bool
	Clock     Clock
	At        time.Time
}

// Daily returns a recurring spec.
func Daily(c Clock) FireSpec {
	return FireSpec{Recurring: true, Clock: c}
}

// Once returns a one-time spec.
func Once(at time.Time) FireSpec {
	return FireSpec{At: at}
}

// Due reports whether the spec fires at now and returns the fire instant.
// A recurring spec is due only during its exact clock minute; the instant
// is that minute on now's calendar date. A one-time spec is due from its
// instant onward.
func (f FireSpec) Due(now time.Time) (time.Time, bool) {
	if f.Recurring {
		if now.Hour() != f.Clock.Hour || now.Minute() != f.Clock.Minute {
			return time.Time{}, false
		}
		y, m, d := now.Date()
		return time.Date(y, m, d, f.Clock.Hour, f.Clock.Minute, 0, 0, now.Location()), true
	}
	if f.At.IsZero() || now.Before(f.At) {
		return time.Time{}, false
	}
	return f.At, true
}

// CombineDateClock joins a YYYY-MM-DD date with a 12-hour time in loc.
func CombineDateClock(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	c, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, loc), nil
}
