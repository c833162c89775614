// Package reminder holds the value types shared by the server-side alert
// pipeline and the polling client: schedule kinds, occurrence keys,
// time-of-day parsing and the Alert wire shape.
package reminder

import "time"

// Kind identifies the schedule a reminder comes from.
type Kind string

const (
	KindMedicine    Kind = "medicine"
	KindAppointment Kind = "appointment"
)

// Kinds lists every kind in polling order.
var Kinds = []Kind{KindMedicine, KindAppointment}

// OneTime reports whether occurrences of this kind fire once ever
// (and are consumed on read) rather than daily.
func (k Kind) OneTime() bool {
	return k == KindAppointment
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindMedicine || k == KindAppointment
}

// Alert is an ephemeral reminder for one occurrence. It is never stored
// durably; consumers must treat it as fire-and-forget.
type Alert struct {
	Key    Key    `json:"key"`
	Kind   Kind   `json:"type"`
	UserID string `json:"userId,omitempty"`

	// medicine
	MedicineID   string `json:"medicineId,omitempty"`
	MedicineName string `json:"medicineName,omitempty"`
	FoodTiming   string `json:"foodTiming,omitempty"`

	// appointment
	AppointmentID string `json:"appointmentId,omitempty"`
	DoctorName    string `json:"doctorName,omitempty"`
	HospitalName  string `json:"hospitalName,omitempty"`
	Date          string `json:"date,omitempty"`

	// Time is the schedule's time as the user entered it.
	Time       string    `json:"time,omitempty"`
	FireAt     time.Time `json:"fireAt"`
	ProducedAt time.Time `json:"producedAt"`
	// ExpiresAt is when the server stops reporting the alert. Zero when
	// the server does not retain it.
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// RecordID returns the id of the schedule record behind the alert.
func (a Alert) RecordID() string {
	if a.Kind == KindAppointment {
		return a.AppointmentID
	}
	return a.MedicineID
}

// Title is the headline used by presenters and push messages.
func (a Alert) Title() string {
	if a.Kind == KindAppointment {
		return "Appointment Reminder"
	}
	return "Medicine Reminder"
}

// Body renders the type-specific message line.
func (a Alert) Body() string {
	switch a.Kind {
	case KindAppointment:
		body := "Appointment with Dr. " + a.DoctorName
		if a.HospitalName != "" {
			body += " at " + a.HospitalName
		}
		if a.Time != "" {
			body += " (" + a.Time + ")"
		}
		return body
	default:
		body := "Time to take " + a.MedicineName
		if a.FoodTiming != "" {
			body += ", " + a.FoodTiming
		}
		if a.Time != "" {
			body += " (" + a.Time + ")"
		}
		return body
	}
}
