package alerts

import (
	"context"
	"log/slog"
	"time"

	"github.com/albapepper/meditrack-alerts/internal/metrics"
	"github.com/albapepper/meditrack-alerts/internal/reminder"
)

// Matcher compares every schedule record against the clock once per tick.
type Matcher struct {
	store  ScheduleStore
	dedup  *Deduplicator
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// NewMatcher reads clock times in loc (nil means time.Local).
func NewMatcher(store ScheduleStore, dedup *Deduplicator, loc *time.Location, logger *slog.Logger) *Matcher {
	if loc == nil {
		loc = time.Local
	}
	return &Matcher{store: store, dedup: dedup, loc: loc, now: time.Now, logger: logger}
}

// TickResult summarises one pass.
type TickResult struct {
	Due        int      `json:"due"`
	Emitted    int      `json:"emitted"`
	Suppressed int      `json:"suppressed"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// Tick evaluates all records at the current time. A failed load skips that
// kind for this tick; a record whose time cannot be parsed is skipped.
func (m *Matcher) Tick(ctx context.Context) TickResult {
	start := time.Now()
	defer func() { metrics.MatcherTickDuration.Observe(time.Since(start).Seconds()) }()
	metrics.MatcherTicks.Inc()

	now := m.now().In(m.loc)
	var res TickResult

	meds, err := m.store.ListMedicines(ctx)
	if err != nil {
		m.loadFailed(&res, reminder.KindMedicine, err)
	}
	for _, med := range meds {
		spec, err := med.FireSpec()
		if err != nil {
			m.skip(&res, reminder.KindMedicine, med.ID.String(), err)
			continue
		}
		at, due := spec.Due(now)
		if !due {
			continue
		}
		m.observe(ctx, &res, Occurrence{
			Kind:        reminder.KindMedicine,
			RecordID:    med.ID,
			FireInstant: at,
			Payload:     med.Alert(at, now),
		})
	}

	appts, err := m.store.ListPendingAppointments(ctx, "")
	if err != nil {
		m.loadFailed(&res, reminder.KindAppointment, err)
	}
	for _, appt := range appts {
		if appt.AlertMatched {
			continue
		}
		spec, err := appt.FireSpec(m.loc)
		if err != nil {
			m.skip(&res, reminder.KindAppointment, appt.ID.String(), err)
			continue
		}
		at, due := spec.Due(now)
		if !due {
			continue
		}
		m.observe(ctx, &res, Occurrence{
			Kind:        reminder.KindAppointment,
			RecordID:    appt.ID,
			FireInstant: at,
			Payload:     appt.Alert(at, now, m.loc),
		})
	}

	return res
}

func (m *Matcher) observe(ctx context.Context, res *TickResult, occ Occurrence) {
	res.Due++
	_, emitted, err := m.dedup.Observe(ctx, occ)
	switch {
	case err != nil:
		m.logger.Warn("observe occurrence", "key", occ.Key(), "error", err)
		res.Errors = append(res.Errors, err.Error())
	case emitted:
		res.Emitted++
	default:
		res.Suppressed++
	}
}

func (m *Matcher) loadFailed(res *TickResult, kind reminder.Kind, err error) {
	metrics.MatcherLoadErrors.WithLabelValues(string(kind)).Inc()
	m.logger.Error("load schedule", "kind", kind, "error", err)
	res.Errors = append(res.Errors, err.Error())
}

func (m *Matcher) skip(res *TickResult, kind reminder.Kind, id string, err error) {
	metrics.MatcherSkippedRecords.WithLabelValues(string(kind)).Inc()
	m.logger.Warn("skipping record", "kind", kind, "id", id, "error", err)
	res.Skipped++
}

// Run ticks once at start, then on every wall-clock minute boundary plus
// each interval after it. Blocks until ctx is cancelled. Intended to be
// called with `go`.
func (m *Matcher) Run(ctx context.Context, interval time.Duration) {
	m.logger.Info("Alert matcher started", "interval", interval, "location", m.loc.String())
	m.logTick(m.Tick(ctx))

	wait := time.Until(m.now().Truncate(time.Minute).Add(time.Minute))
	select {
	case <-time.After(wait):
		m.logTick(m.Tick(ctx))
	case <-ctx.Done():
		m.logger.Info("Alert matcher stopped")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.logTick(m.Tick(ctx))
		case <-ctx.Done():
			m.logger.Info("Alert matcher stopped")
			return
		}
	}
}

func (m *Matcher) logTick(res TickResult) {
	if res.Due > 0 || len(res.Errors) > 0 {
		m.logger.Info("matcher tick",
			"due", res.Due, "emitted", res.Emitted,
			"suppressed", res.Suppressed, "skipped", res.Skipped,
			"errors", len(res.Errors))
	}
}
