// Package alerts turns schedule records into reminder alerts.
//
// Pipeline: Matcher tick → Deduplicator (retention Queue, durable flag for
// appointments) → per-user Queue → Service.Check on client poll.
//
// The Queue's TTL bounds memory and lets a medicine alert fire again the next
// day under a new key. The polling client keeps a separate shown-set
// (internal/client) for several polling surfaces and reloads in one session.
package alerts

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/meditrack-alerts/internal/reminder"
	"github.com/albapepper/meditrack-alerts/internal/schedule"
)

// ScheduleStore is the read/flag surface of the schedule store.
type ScheduleStore interface {
	ListMedicines(ctx context.Context) ([]schedule.Medicine, error)
	ListPendingAppointments(ctx context.Context, userID string) ([]schedule.Appointment, error)
	MarkMatched(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	ClaimAlerted(ctx context.Context, userID string, ids []uuid.UUID) ([]schedule.Appointment, error)
}

// Queue is the retention map of produced alerts, keyed by occurrence.
type Queue interface {
	// Record stores a unless its key is present and unexpired. It reports
	// whether a was stored.
	Record(ctx context.Context, a reminder.Alert, ttl time.Duration) (bool, error)
	// Drain returns the user's unexpired alerts of kind in emission order.
	// One-time kinds are removed as they are returned; recurring ones stay
	// visible until their TTL runs out.
	Drain(ctx context.Context, userID string, kind reminder.Kind) ([]reminder.Alert, error)
	// EvictExpired drops expired entries and returns how many were dropped.
	EvictExpired(ctx context.Context) (int, error)
	// Len counts unexpired entries.
	Len(ctx context.Context) (int, error)
}

// Notifier receives every newly produced alert. Implementations must not
// block the caller.
type Notifier interface {
	Notify(ctx context.Context, a reminder.Alert)
}

// Occurrence is one match of a schedule record against the clock.
type Occurrence struct {
	Kind        reminder.Kind
	RecordID    uuid.UUID
	FireInstant time.Time
	Payload     reminder.Alert
}

// Key derives the occurrence key.
func (o Occurrence) Key() reminder.Key {
	return reminder.NewKey(o.Kind, o.RecordID.String(), o.FireInstant)
}

func sortByProduced(as []reminder.Alert) {
	sort.SliceStable(as, func(i, j int) bool {
		return as[i].ProducedAt.Before(as[j].ProducedAt)
	})
}

func sortByFireAt(as []reminder.Alert) {
	sort.SliceStable(as, func(i, j int) bool {
		return as[i].FireAt.Before(as[j].FireAt)
	})
}
