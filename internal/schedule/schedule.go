// Package schedule reads medicine and appointment records from the schedule
// store and flips the appointment alert flags. Record CRUD lives elsewhere.
package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/meditrack-alerts/internal/reminder"
)

// Medicine is a daily reminder at a 12-hour clock time.
type Medicine struct {
	ID         uuid.UUID
	UserID     string
	Name       string
	FoodTiming string
	Time       string
	Period     string // AM | PM | "" when Time carries the designator
}

// FireSpec parses the stored time into a daily spec.
func (m Medicine) FireSpec() (reminder.FireSpec, error) {
	c, err := reminder.ParseClockPeriod(m.Time, m.Period)
	if err != nil {
		return reminder.FireSpec{}, err
	}
	return reminder.Daily(c), nil
}

// DisplayTime is the time as the user entered it.
func (m Medicine) DisplayTime() string {
	if m.Period == "" {
		return m.Time
	}
	return m.Time + " " + m.Period
}

// Alert builds the alert payload for an occurrence at fireAt.
func (m Medicine) Alert(fireAt, producedAt time.Time) reminder.Alert {
	id := m.ID.String()
	return reminder.Alert{
		Key:          reminder.NewKey(reminder.KindMedicine, id, fireAt),
		Kind:         reminder.KindMedicine,
		UserID:       m.UserID,
		MedicineID:   id,
		MedicineName: m.Name,
		FoodTiming:   m.FoodTiming,
		Time:         m.DisplayTime(),
		FireAt:       fireAt,
		ProducedAt:   producedAt,
	}
}

// Appointment is a one-time reminder.
type Appointment struct {
	ID           uuid.UUID
	UserID       string
	DoctorName   string
	HospitalName string
	At           *time.Time // absolute instant when stored that way
	Date         string     // YYYY-MM-DD, used with Time when At is nil
	Time         string
	AlertMatched bool
	AlertSent    bool
}

// FireSpec returns the one-time spec. Date/Time pairs are read in loc.
func (a Appointment) FireSpec(loc *time.Location) (reminder.FireSpec, error) {
	if a.At != nil && !a.At.IsZero() {
		return reminder.Once(*a.At), nil
	}
	at, err := reminder.CombineDateClock(a.Date, a.Time, loc)
	if err != nil {
		return reminder.FireSpec{}, err
	}
	return reminder.Once(at), nil
}

// Alert builds the alert payload for the appointment firing at fireAt.
func (a Appointment) Alert(fireAt, producedAt time.Time, loc *time.Location) reminder.Alert {
	id := a.ID.String()
	display, date := a.Time, a.Date
	if display == "" {
		display = fireAt.In(loc).Format("3:04 PM")
	}
	if date == "" {
		date = fireAt.In(loc).Format("2006-01-02")
	}
	return reminder.Alert{
		Key:           reminder.NewKey(reminder.KindAppointment, id, fireAt),
		Kind:          reminder.KindAppointment,
		UserID:        a.UserID,
		AppointmentID: id,
		DoctorName:    a.DoctorName,
		HospitalName:  a.HospitalName,
		Date:          date,
		Time:          display,
		FireAt:        fireAt,
		ProducedAt:    producedAt,
	}
}
