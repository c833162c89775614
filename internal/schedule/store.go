package schedule

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/meditrack-alerts/internal/db"
)

// PGStore reads schedule records through the prepared statements in
// internal/db.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a store backed by pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// ListMedicines returns every medicine record.
func (s *PGStore) ListMedicines(ctx context.Context) ([]Medicine, error) {
	rows, err := s.pool.Query(ctx, db.StmtListMedicines)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()

	var out []Medicine
	for rows.Next() {
		var m Medicine
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.FoodTiming, &m.Time, &m.Period); err != nil {
			return nil, fmt.Errorf("scan medicine: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListPendingAppointments returns appointments whose alert has not been
// delivered. An empty userID lists every user's.
func (s *PGStore) ListPendingAppointments(ctx context.Context, userID string) ([]Appointment, error) {
	rows, err := s.pool.Query(ctx, db.StmtListPendingAppointments, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending appointments: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// MarkMatched sets alert_matched on the given appointments and returns the
// ids this call flipped. Ids already matched are left out.
func (s *PGStore) MarkMatched(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, db.StmtMarkAppointmentsMatched, ids)
	if err != nil {
		return nil, fmt.Errorf("mark appointments matched: %w", err)
	}
	defer rows.Close()

	var flipped []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan matched id: %w", err)
		}
		flipped = append(flipped, id)
	}
	return flipped, rows.Err()
}

// ClaimAlerted sets alert_sent on the user's given appointments and returns
// the rows this call flipped, in one statement.
func (s *PGStore) ClaimAlerted(ctx context.Context, userID string, ids []uuid.UUID) ([]Appointment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, db.StmtClaimAppointmentAlerts, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("claim appointment alerts: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// DeviceEndpoints returns the user's active push endpoints.
func (s *PGStore) DeviceEndpoints(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, db.StmtUserDeviceEndpoints, userID)
	if err != nil {
		return nil, fmt.Errorf("get device endpoints: %w", err)
	}
	defer rows.Close()

	var endpoints []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("scan endpoint: %w", err)
		}
		endpoints = append(endpoints, e)
	}
	return endpoints, rows.Err()
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.DoctorName, &a.HospitalName,
			&a.At, &a.Date, &a.Time, &a.AlertMatched, &a.AlertSent,
		); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
