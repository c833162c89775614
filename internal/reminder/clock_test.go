package reminder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12:00 AM", "00:00"},
		{"12:00 PM", "12:00"},
		{"1:05 PM", "13:05"},
		{"11:59 PM", "23:59"},
		{"12:30 AM", "00:30"},
		{"9:00 AM", "09:00"},
		{"09:00 am", "09:00"},
		{"7:45PM", "19:45"},
		{"  3:15 pm  ", "15:15"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseClock(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.String())
		})
	}
}

func TestParseClock_Invalid(t *testing.T) {
	for _, in := range []string{"", "13:00", "13:00 PM", "0:30 AM", "9:60 AM", "9:5 AM", "nine AM", "9 AM", "9:00 XM"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseClock(in)
			assert.ErrorIs(t, err, ErrInvalidClock)
		})
	}
}

func TestParseClockPeriod(t *testing.T) {
	c, err := ParseClockPeriod("08:30", "pm")
	require.NoError(t, err)
	assert.Equal(t, "20:30", c.String())

	// designator inside the time field wins
	c, err = ParseClockPeriod("8:30 AM", "PM")
	require.NoError(t, err)
	assert.Equal(t, "08:30", c.String())

	_, err = ParseClockPeriod("08:30", "")
	assert.ErrorIs(t, err, ErrInvalidClock)
}
