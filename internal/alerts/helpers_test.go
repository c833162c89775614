package alerts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/meditrack-alerts/internal/reminder"
	"github.com/albapepper/meditrack-alerts/internal/schedule"
)

var errStoreDown = errors.New("store down")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fakeStore struct {
	mu      sync.Mutex
	meds    []schedule.Medicine
	appts   []schedule.Appointment
	medErr  error
	apptErr error
}

func (s *fakeStore) ListMedicines(context.Context) ([]schedule.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.medErr != nil {
		return nil, s.medErr
	}
	return append([]schedule.Medicine(nil), s.meds...), nil
}

func (s *fakeStore) ListPendingAppointments(_ context.Context, userID string) ([]schedule.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.apptErr != nil {
		return nil, s.apptErr
	}
	var out []schedule.Appointment
	for _, a := range s.appts {
		if !a.AlertSent && (userID == "" || a.UserID == userID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkMatched(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var flipped []uuid.UUID
	for i := range s.appts {
		if contains(ids, s.appts[i].ID) && !s.appts[i].AlertMatched {
			s.appts[i].AlertMatched = true
			flipped = append(flipped, s.appts[i].ID)
		}
	}
	return flipped, nil
}

func (s *fakeStore) ClaimAlerted(_ context.Context, userID string, ids []uuid.UUID) ([]schedule.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.apptErr != nil {
		return nil, s.apptErr
	}
	var out []schedule.Appointment
	for i := range s.appts {
		a := &s.appts[i]
		if a.UserID == userID && contains(ids, a.ID) && !a.AlertSent {
			a.AlertSent = true
			a.AlertMatched = true
			out = append(out, *a)
		}
	}
	return out, nil
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

type recordingNotifier struct {
	mu   sync.Mutex
	seen []reminder.Alert
}

func (n *recordingNotifier) Notify(_ context.Context, a reminder.Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = append(n.seen, a)
}

// pipeline wires a memory queue, deduplicator, matcher and service to one
// fake clock, all reading clock times in UTC.
type pipeline struct {
	clock    *fakeClock
	store    *fakeStore
	queue    *MemoryQueue
	notifier *recordingNotifier
	dedup    *Deduplicator
	matcher  *Matcher
	service  *Service
}

func newPipeline(store *fakeStore, start time.Time) *pipeline {
	clock := &fakeClock{t: start}
	queue := NewMemoryQueue()
	queue.now = clock.Now

	notifier := &recordingNotifier{}
	dedup := NewDeduplicator(queue, store, TTLs{Medicine: 5 * time.Minute, Appointment: 5 * time.Minute}, notifier, testLogger())
	dedup.now = clock.Now

	matcher := NewMatcher(store, dedup, time.UTC, testLogger())
	matcher.now = clock.Now

	service := NewService(store, queue, time.UTC, testLogger())
	service.now = clock.Now

	return &pipeline{
		clock: clock, store: store, queue: queue, notifier: notifier,
		dedup: dedup, matcher: matcher, service: service,
	}
}

func at(hour, minute, second int) time.Time {
	return time.Date(2024, 6, 1, hour, minute, second, 0, time.UTC)
}
