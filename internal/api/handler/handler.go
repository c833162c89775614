// Package handler provides HTTP handlers for all API endpoints.
// Alert handlers never fail a poll: store trouble yields an empty list.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/albapepper/meditrack-alerts/internal/api/respond"
	"github.com/albapepper/meditrack-alerts/internal/reminder"
)

// AlertChecker answers alert polls for one user.
type AlertChecker interface {
	Check(ctx context.Context, userID string, kind reminder.Kind) []reminder.Alert
	CheckAll(ctx context.Context, userID string) []reminder.Alert
}

// Pinger reports database reachability.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// QueueSizer reports how many alerts the retention queue holds.
type QueueSizer interface {
	Len(ctx context.Context) (int, error)
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	alerts  AlertChecker
	db      Pinger
	queue   QueueSizer
	backend string
	logger  *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(alerts AlertChecker, db Pinger, queue QueueSizer, backend string, logger *slog.Logger) *Handler {
	return &Handler{alerts: alerts, db: db, queue: queue, backend: backend, logger: logger}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and docs location.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "MediTrack Alerts API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"endpoints": []string{
			"/api/v1/alerts/check",
			"/api/v1/medicines/alerts/check",
			"/api/v1/appointments/alerts/check",
		},
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		h.logger.Warn("database health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckQueue reports the retention queue backend and size.
// @Summary Alert queue health check
// @Description Returns the dedup backend and the number of unexpired queued alerts.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/queue [get]
func (h *Handler) HealthCheckQueue(w http.ResponseWriter, r *http.Request) {
	n, err := h.queue.Len(r.Context())
	if err != nil {
		h.logger.Warn("queue health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"backend":   h.backend,
			"error":     "Alert queue unavailable",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"backend":   h.backend,
		"queued":    n,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
