// Package db provides a pgxpool-based connection pool with prepared statement
// registration, schema migration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/meditrack-alerts/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool. The schema must exist:
// statements are prepared on every new connection.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// Statement names shared with internal/schedule.
const (
	StmtListMedicines           = "list_medicines"
	StmtListPendingAppointments = "list_pending_appointments"
	StmtMarkAppointmentsMatched = "mark_appointments_matched"
	StmtClaimAppointmentAlerts  = "claim_appointment_alerts"
	StmtUserDeviceEndpoints     = "get_user_device_endpoints"
)

const appointmentColumns = `id, user_id, doctor_name, hospital_name,
	appointment_at, appointment_date, appointment_time, alert_matched, alert_sent`

// Statements maps prepared statement names to SQL.
var Statements = map[string]string{
	"health_check": "SELECT 1",

	// Time Matcher
	StmtListMedicines: `SELECT id, user_id, medicine_name, food_timing, time, period
		FROM medicines ORDER BY created_at, id`,
	StmtListPendingAppointments: `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE alert_sent = false AND ($1::text = '' OR user_id = $1::text)
		ORDER BY created_at, id`,

	// Conditional flips: only rows changed by this statement come back, so
	// concurrent callers never both see the same row.
	StmtMarkAppointmentsMatched: `UPDATE appointments
		SET alert_matched = true, updated_at = NOW()
		WHERE id = ANY($1) AND alert_matched = false
		RETURNING id`,
	StmtClaimAppointmentAlerts: `UPDATE appointments
		SET alert_sent = true, alert_matched = true, updated_at = NOW()
		WHERE user_id = $1 AND id = ANY($2) AND alert_sent = false
		RETURNING ` + appointmentColumns,

	// Push
	StmtUserDeviceEndpoints: "SELECT endpoint_arn FROM user_devices WHERE user_id = $1 AND is_active = true",
}

func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	for name, sql := range Statements {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
