package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/meditrack-alerts/internal/reminder"
)

func TestMedicine_FireSpec(t *testing.T) {
	tests := []struct {
		name string
		med  Medicine
		want string
	}{
		{"designator in time", Medicine{Time: "9:00 AM"}, "09:00"},
		{"separate period", Medicine{Time: "09:00", Period: "PM"}, "21:00"},
		{"midnight", Medicine{Time: "12:15", Period: "AM"}, "00:15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := tt.med.FireSpec()
			require.NoError(t, err)
			assert.True(t, spec.Recurring)
			assert.Equal(t, tt.want, spec.Clock.String())
		})
	}

	_, err := Medicine{Time: "21:00"}.FireSpec()
	assert.ErrorIs(t, err, reminder.ErrInvalidClock)
}

func TestMedicine_Alert(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	m := Medicine{ID: id, UserID: "u1", Name: "Aspirin", FoodTiming: "After Food", Time: "9:00", Period: "AM"}
	fireAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	a := m.Alert(fireAt, fireAt.Add(10*time.Second))
	assert.Equal(t, reminder.NewKey(reminder.KindMedicine, id.String(), fireAt), a.Key)
	assert.Equal(t, reminder.KindMedicine, a.Kind)
	assert.Equal(t, "Aspirin", a.MedicineName)
	assert.Equal(t, "9:00 AM", a.Time)
	assert.Equal(t, id.String(), a.RecordID())
}

func TestAppointment_FireSpec(t *testing.T) {
	loc := time.FixedZone("test", 3600)
	at := time.Date(2024, 1, 1, 14, 30, 0, 0, time.UTC)

	spec, err := Appointment{At: &at, Date: "1999-01-01", Time: "1:00 AM"}.FireSpec(loc)
	require.NoError(t, err)
	assert.False(t, spec.Recurring)
	assert.True(t, spec.At.Equal(at), "absolute instant wins over date/time fields")

	spec, err = Appointment{Date: "2024-01-01", Time: "2:30 PM"}.FireSpec(loc)
	require.NoError(t, err)
	assert.True(t, spec.At.Equal(time.Date(2024, 1, 1, 14, 30, 0, 0, loc)))

	_, err = Appointment{Date: "2024-01-01", Time: "half past two"}.FireSpec(loc)
	assert.Error(t, err)
}

func TestAppointment_AlertFillsDisplayFields(t *testing.T) {
	at := time.Date(2024, 1, 1, 14, 30, 0, 0, time.UTC)
	a := Appointment{ID: uuid.New(), UserID: "u1", DoctorName: "Smith", HospitalName: "General", At: &at}

	alert := a.Alert(at, at, time.UTC)
	assert.Equal(t, "2:30 PM", alert.Time)
	assert.Equal(t, "2024-01-01", alert.Date)
	assert.Equal(t, reminder.Key("appointment_"+a.ID.String()+"_2024-01-01T14:30Z"), alert.Key)
	assert.Equal(t, "Appointment with Dr. Smith at General (2:30 PM)", alert.Body())
}
