package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/meditrack-alerts/internal/metrics"
	"github.com/albapepper/meditrack-alerts/internal/reminder"
)

// Marker flips the durable per-record "matched" flag and returns the ids
// whose flag it changed.
type Marker interface {
	MarkMatched(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

// TTLs is how long an occurrence key is retained per kind. The medicine TTL
// must cover at least one tick interval or the same minute can fire twice.
type TTLs struct {
	Medicine    time.Duration
	Appointment time.Duration
}

func (t TTLs) For(k reminder.Kind) time.Duration {
	if k == reminder.KindAppointment {
		return t.Appointment
	}
	return t.Medicine
}

// Deduplicator collapses repeated observations of the same occurrence into
// one alert.
type Deduplicator struct {
	queue    Queue
	marker   Marker
	notifier Notifier
	ttls     TTLs
	now      func() time.Time
	logger   *slog.Logger
}

// NewDeduplicator wires the retention queue and the durable marker.
// notifier may be nil.
func NewDeduplicator(queue Queue, marker Marker, ttls TTLs, notifier Notifier, logger *slog.Logger) *Deduplicator {
	return &Deduplicator{
		queue:    queue,
		marker:   marker,
		notifier: notifier,
		ttls:     ttls,
		now:      time.Now,
		logger:   logger,
	}
}

// Observe records an occurrence. It returns the produced alert and true the
// first time the occurrence is seen, and false for every repeat. One-time
// kinds are additionally gated on the durable matched flag, so a restart
// cannot emit them again.
func (d *Deduplicator) Observe(ctx context.Context, occ Occurrence) (reminder.Alert, bool, error) {
	a := occ.Payload
	a.Key = occ.Key()
	a.Kind = occ.Kind
	a.FireAt = occ.FireInstant
	a.ProducedAt = d.now()
	a.ExpiresAt = a.ProducedAt.Add(d.ttls.For(occ.Kind))

	if occ.Kind.OneTime() && d.marker != nil {
		flipped, err := d.marker.MarkMatched(ctx, []uuid.UUID{occ.RecordID})
		if err != nil {
			return reminder.Alert{}, false, fmt.Errorf("mark %s matched: %w", a.Key, err)
		}
		if len(flipped) == 0 {
			metrics.AlertsSuppressed.WithLabelValues(string(occ.Kind)).Inc()
			return reminder.Alert{}, false, nil
		}
	}

	stored, err := d.queue.Record(ctx, a, d.ttls.For(occ.Kind))
	if err != nil {
		return reminder.Alert{}, false, fmt.Errorf("record %s: %w", a.Key, err)
	}
	if !stored {
		metrics.AlertsSuppressed.WithLabelValues(string(occ.Kind)).Inc()
		return reminder.Alert{}, false, nil
	}

	metrics.AlertsEmitted.WithLabelValues(string(occ.Kind)).Inc()
	msg := "Medicine reminder triggered"
	if occ.Kind == reminder.KindAppointment {
		msg = "Appointment reminder triggered"
	}
	d.logger.Info(msg, "key", a.Key, "user_id", a.UserID, "record_id", occ.RecordID, "fire_at", a.FireAt)
	if d.notifier != nil {
		d.notifier.Notify(ctx, a)
	}
	return a, true, nil
}
