package alerts

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/meditrack-alerts/internal/metrics"
	"github.com/albapepper/meditrack-alerts/internal/reminder"
)

// Service answers "which alerts are due for me" polls. Every failure is
// logged and answered with an empty list.
type Service struct {
	store  ScheduleStore
	queue  Queue
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

func NewService(store ScheduleStore, queue Queue, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: store, queue: queue, loc: loc, now: time.Now, logger: logger}
}

// Check returns the caller's due alerts of one kind. The result is never nil.
func (s *Service) Check(ctx context.Context, userID string, kind reminder.Kind) []reminder.Alert {
	var (
		out []reminder.Alert
		err error
	)
	switch kind {
	case reminder.KindMedicine:
		out, err = s.queue.Drain(ctx, userID, kind)
	case reminder.KindAppointment:
		out, err = s.claimAppointments(ctx, userID)
	default:
		return []reminder.Alert{}
	}
	if err != nil {
		metrics.AlertQueries.WithLabelValues(string(kind), "error").Inc()
		s.logger.Warn("alert check failed", "kind", kind, "user_id", userID, "error", err)
		return []reminder.Alert{}
	}
	if out == nil {
		out = []reminder.Alert{}
	}
	metrics.AlertQueries.WithLabelValues(string(kind), "ok").Inc()
	metrics.AlertsDelivered.WithLabelValues(string(kind)).Add(float64(len(out)))
	return out
}

// CheckAll returns every kind in one list, medicines first.
func (s *Service) CheckAll(ctx context.Context, userID string) []reminder.Alert {
	out := []reminder.Alert{}
	for _, k := range reminder.Kinds {
		out = append(out, s.Check(ctx, userID, k)...)
	}
	return out
}

// claimAppointments re-evaluates the caller's unsent appointments and
// atomically flips alert_sent on the due ones. Only rows this call flipped
// are returned, so concurrent polls deliver each appointment once.
func (s *Service) claimAppointments(ctx context.Context, userID string) ([]reminder.Alert, error) {
	pending, err := s.store.ListPendingAppointments(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	fireAt := make(map[uuid.UUID]time.Time)
	var ids []uuid.UUID
	for _, appt := range pending {
		spec, err := appt.FireSpec(s.loc)
		if err != nil {
			s.logger.Warn("skipping appointment", "id", appt.ID, "error", err)
			continue
		}
		if at, due := spec.Due(now); due {
			fireAt[appt.ID] = at
			ids = append(ids, appt.ID)
		}
	}

	queued, err := s.queue.Drain(ctx, userID, reminder.KindAppointment)
	if err != nil {
		s.logger.Warn("drain queued appointments", "user_id", userID, "error", err)
	}
	byKey := make(map[reminder.Key]reminder.Alert, len(queued))
	for _, a := range queued {
		byKey[a.Key] = a
	}

	if len(ids) == 0 {
		return []reminder.Alert{}, nil
	}
	claimed, err := s.store.ClaimAlerted(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]reminder.Alert, 0, len(claimed))
	for _, appt := range claimed {
		at := fireAt[appt.ID]
		a := appt.Alert(at, now, s.loc)
		if q, ok := byKey[a.Key]; ok {
			a = q
		}
		out = append(out, a)
	}
	sortByFireAt(out)
	return out, nil
}
