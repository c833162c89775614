package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/albapepper/meditrack-alerts/internal/reminder"
)

// Presenter shows a de-duplicated batch. Alerts are fire-and-forget: a
// presenter must not assume they can be fetched again.
type Presenter interface {
	Present(ctx context.Context, batch []reminder.Alert)
}

// MultiPresenter fans a batch out to several presenters in order.
type MultiPresenter []Presenter

func (m MultiPresenter) Present(ctx context.Context, batch []reminder.Alert) {
	for _, p := range m {
		p.Present(ctx, batch)
	}
}

// TerminalPresenter prints one banner line per alert.
type TerminalPresenter struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

func NewTerminalPresenter(w io.Writer) *TerminalPresenter {
	return &TerminalPresenter{w: w, now: time.Now}
}

func (t *TerminalPresenter) Present(_ context.Context, batch []reminder.Alert) {
	t.mu.Lock()
	defer t.mu.Unlock()
	stamp := t.now().Format("15:04")
	for _, a := range batch {
		fmt.Fprintf(t.w, "[%s] %s: %s\n", stamp, a.Title(), a.Body())
	}
}

const (
	notifyObj    = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"
	appName      = "MediTrack"
)

// busCaller is the part of dbus.BusObject used for notifications.
type busCaller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// DesktopPresenter raises freedesktop notifications on the session bus.
// Presenting the same key again replaces the earlier bubble.
type DesktopPresenter struct {
	obj     busCaller
	dismiss time.Duration
	logger  *slog.Logger

	mu  sync.Mutex
	ids map[reminder.Key]uint32
}

// NewDesktopPresenter connects to the session bus.
func NewDesktopPresenter(dismiss time.Duration, logger *slog.Logger) (*DesktopPresenter, error) {
	bus, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return newDesktopPresenter(bus.Object(notifyObj, notifyPath), dismiss, logger), nil
}

func newDesktopPresenter(obj busCaller, dismiss time.Duration, logger *slog.Logger) *DesktopPresenter {
	return &DesktopPresenter{obj: obj, dismiss: dismiss, logger: logger, ids: make(map[reminder.Key]uint32)}
}

func (d *DesktopPresenter) Present(_ context.Context, batch []reminder.Alert) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, a := range batch {
		key := reminder.KeyFor(a)
		hints := map[string]dbus.Variant{
			"category":        dbus.MakeVariant("x-meditrack." + string(a.Kind)),
			"x-meditrack-key": dbus.MakeVariant(string(key)),
		}
		call := d.obj.Call(notifyMethod, 0,
			appName,
			d.ids[key],
			"",
			a.Title(),
			a.Body(),
			[]string{},
			hints,
			int32(d.dismiss/time.Millisecond),
		)
		if call.Err != nil {
			d.logger.Warn("desktop notification failed", "key", key, "error", call.Err)
			continue
		}
		var id uint32
		if err := call.Store(&id); err == nil {
			d.ids[key] = id
		}
	}
}
