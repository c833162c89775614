package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/meditrack-alerts/internal/reminder"
)

func medAlert(key, user string) reminder.Alert {
	return reminder.Alert{Key: reminder.Key(key), Kind: reminder.KindMedicine, UserID: user, MedicineName: key}
}

func apptAlert(key, user string) reminder.Alert {
	return reminder.Alert{Key: reminder.Key(key), Kind: reminder.KindAppointment, UserID: user, DoctorName: key}
}

func TestMemoryQueue_RecordOncePerKey(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: at(9, 0, 0)}
	q := NewMemoryQueue()
	q.now = clock.Now

	ok, err := q.Record(ctx, medAlert("k1", "u1"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = q.Record(ctx, medAlert("k1", "u1"), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	clock.Set(at(9, 1, 0))
	ok, err = q.Record(ctx, medAlert("k1", "u1"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired key is replaced")
}

func TestMemoryQueue_DrainMedicineKeepsEntries(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: at(9, 0, 0)}
	q := NewMemoryQueue()
	q.now = clock.Now

	_, _ = q.Record(ctx, medAlert("a", "u1"), 5*time.Minute)
	_, _ = q.Record(ctx, medAlert("b", "u1"), 5*time.Minute)
	_, _ = q.Record(ctx, medAlert("c", "u2"), 5*time.Minute)

	got, err := q.Drain(ctx, "u1", reminder.KindMedicine)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, reminder.Key("a"), got[0].Key)
	assert.Equal(t, reminder.Key("b"), got[1].Key)

	again, err := q.Drain(ctx, "u1", reminder.KindMedicine)
	require.NoError(t, err)
	assert.Len(t, again, 2)

	clock.Set(at(9, 5, 0))
	gone, err := q.Drain(ctx, "u1", reminder.KindMedicine)
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestMemoryQueue_DrainAppointmentConsumes(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()

	_, _ = q.Record(ctx, apptAlert("x", "u1"), time.Hour)
	_, _ = q.Record(ctx, medAlert("m", "u1"), time.Hour)

	got, err := q.Drain(ctx, "u1", reminder.KindAppointment)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, reminder.Key("x"), got[0].Key)

	got, err = q.Drain(ctx, "u1", reminder.KindAppointment)
	require.NoError(t, err)
	assert.Empty(t, got)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryQueue_EvictExpired(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: at(9, 0, 0)}
	q := NewMemoryQueue()
	q.now = clock.Now

	_, _ = q.Record(ctx, medAlert("short", "u1"), time.Minute)
	_, _ = q.Record(ctx, medAlert("long", "u1"), time.Hour)

	clock.Set(at(9, 2, 0))
	n, err := q.EvictExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	size, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, size)
	assert.NotContains(t, q.entries, reminder.Key("short"))
}
