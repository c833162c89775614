package client

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalPresenter(t *testing.T) {
	var buf bytes.Buffer
	p := NewTerminalPresenter(&buf)
	p.now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }

	p.Present(context.Background(), batch())
	assert.Equal(t,
		"[09:00] Medicine Reminder: Time to take Aspirin (9:00 AM)\n"+
			"[09:00] Appointment Reminder: Appointment with Dr. Smith\n",
		buf.String())
}

type fakeBus struct {
	calls [][]interface{}
	next  uint32
	err   error
}

func (f *fakeBus) Call(method string, _ dbus.Flags, args ...interface{}) *dbus.Call {
	f.calls = append(f.calls, append([]interface{}{method}, args...))
	if f.err != nil {
		return &dbus.Call{Err: f.err}
	}
	f.next++
	return &dbus.Call{Body: []interface{}{f.next}}
}

func TestDesktopPresenter_ReplacesSameKey(t *testing.T) {
	bus := &fakeBus{}
	p := newDesktopPresenter(bus, 20*time.Second, discard())

	b := batch()
	p.Present(context.Background(), b[:1])
	p.Present(context.Background(), b[:1])

	require.Len(t, bus.calls, 2)
	first, second := bus.calls[0], bus.calls[1]
	assert.Equal(t, notifyMethod, first[0])
	assert.Equal(t, appName, first[1])
	assert.Equal(t, uint32(0), first[2])
	assert.Equal(t, uint32(1), second[2], "second notify replaces the first bubble")
	assert.Equal(t, "Medicine Reminder", first[4])
	assert.Equal(t, "Time to take Aspirin (9:00 AM)", first[5])
	assert.Equal(t, int32(20000), first[8])

	hints := first[7].(map[string]dbus.Variant)
	assert.Equal(t, "medicine_m1_2024-01-01T09:00", hints["x-meditrack-key"].Value())
}

func TestDesktopPresenter_BusErrorIsLogged(t *testing.T) {
	bus := &fakeBus{err: errors.New("no notification daemon")}
	p := newDesktopPresenter(bus, time.Second, discard())

	p.Present(context.Background(), batch())
	assert.Len(t, bus.calls, 2)
	assert.Empty(t, p.ids)
}

func TestMultiPresenter(t *testing.T) {
	a, b := &recordingPresenter{}, &recordingPresenter{}
	MultiPresenter{a, b}.Present(context.Background(), batch())
	assert.Len(t, a.keys(), 2)
	assert.Len(t, b.keys(), 2)
}
