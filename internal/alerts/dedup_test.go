package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/meditrack-alerts/internal/reminder"
	"github.com/albapepper/meditrack-alerts/internal/schedule"
)

type failingMarker struct{}

func (failingMarker) MarkMatched(context.Context, []uuid.UUID) ([]uuid.UUID, error) {
	return nil, errStoreDown
}

func TestDeduplicator_Observe(t *testing.T) {
	ctx := context.Background()
	id := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	fire := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		kind    reminder.Kind
		marker  Marker
		first   bool
		second  bool
		wantErr bool
	}{
		{name: "medicine", kind: reminder.KindMedicine, marker: failingMarker{}, first: true, second: false},
		{name: "appointment without record", kind: reminder.KindAppointment, marker: &fakeStore{}, first: false, second: false},
		{name: "appointment marker down", kind: reminder.KindAppointment, marker: failingMarker{}, wantErr: true},
		{name: "appointment without marker", kind: reminder.KindAppointment, marker: nil, first: true, second: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDeduplicator(NewMemoryQueue(), tt.marker, TTLs{Medicine: time.Minute, Appointment: time.Minute}, nil, testLogger())
			occ := Occurrence{Kind: tt.kind, RecordID: id, FireInstant: fire, Payload: reminder.Alert{UserID: "u1"}}

			a, ok, err := d.Observe(ctx, occ)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.first, ok)
			if ok {
				assert.Equal(t, occ.Key(), a.Key)
				assert.Equal(t, fire, a.FireAt)
				assert.Equal(t, a.ProducedAt.Add(time.Minute), a.ExpiresAt)
			}

			_, ok, err = d.Observe(ctx, occ)
			require.NoError(t, err)
			assert.Equal(t, tt.second, ok)
		})
	}
}

func TestDeduplicator_AppointmentOnce(t *testing.T) {
	ctx := context.Background()
	appt := smith()
	store := &fakeStore{appts: []schedule.Appointment{appt}}
	notifier := &recordingNotifier{}
	d := NewDeduplicator(NewMemoryQueue(), store, TTLs{Medicine: time.Minute, Appointment: time.Minute}, notifier, testLogger())
	occ := Occurrence{Kind: reminder.KindAppointment, RecordID: appt.ID, FireInstant: *appt.At, Payload: reminder.Alert{UserID: "u1"}}

	_, ok, err := d.Observe(ctx, occ)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second process with its own empty queue still sees the flag.
	other := NewDeduplicator(NewMemoryQueue(), store, TTLs{Medicine: time.Minute, Appointment: time.Minute}, notifier, testLogger())
	_, ok, err = other.Observe(ctx, occ)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Len(t, notifier.seen, 1)
}
