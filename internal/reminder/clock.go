package reminder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidClock is returned for time-of-day values that are not a
// 12-hour clock reading with an AM/PM designator.
var ErrInvalidClock = errors.New("invalid 12-hour time")

// Clock is a wall-clock minute in 24-hour form.
type Clock struct {
	Hour   int
	Minute int
}

// String formats the clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClock converts a 12-hour reading such as "9:05 PM" or "12:30am"
// to 24-hour form. 12 AM is midnight, 12 PM is noon.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	period := strings.ToUpper(s[len(s)-2:])
	if period != "AM" && period != "PM" {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return ParseClockPeriod(s[:len(s)-2], period)
}

// ParseClockPeriod handles records that keep "HH:MM" and the AM/PM
// designator in separate fields. A designator already present in t wins
// over period.
func ParseClockPeriod(t, period string) (Clock, error) {
	t = strings.TrimSpace(t)
	if n := len(t); n >= 2 {
		if p := strings.ToUpper(t[n-2:]); p == "AM" || p == "PM" {
			t, period = strings.TrimSpace(t[:n-2]), p
		}
	}
	period = strings.ToUpper(strings.TrimSpace(period))
	if period != "AM" && period != "PM" {
		return Clock{}, fmt.Errorf("%w: missing AM/PM in %q", ErrInvalidClock, t)
	}

	hh, mm, ok := strings.Cut(t, ":")
	if !ok {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, t)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 1 || hour > 12 {
		return Clock{}, fmt.Errorf("%w: hour in %q", ErrInvalidClock, t)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("%w: minute in %q", ErrInvalidClock, t)
	}

	switch {
	case period == "AM" && hour == 12:
		hour = 0
	case period == "PM" && hour < 12:
		hour += 12
	}
	return Clock{Hour: hour, Minute: minute}, nil
}
