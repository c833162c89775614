package handler

import (
	"net/http"

	"github.com/albapepper/meditrack-alerts/internal/api/respond"
	"github.com/albapepper/meditrack-alerts/internal/auth"
	"github.com/albapepper/meditrack-alerts/internal/reminder"
)

// AlertsResponse is the body of every alert check endpoint.
type AlertsResponse struct {
	Alerts []reminder.Alert `json:"alerts"`
}

// CheckAlerts returns every due alert for the caller, tagged by type.
// @Summary Check all alerts
// @Description Returns the caller's due medicine and appointment alerts. Returned appointment alerts are marked as alerted and never returned again.
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} handler.AlertsResponse
// @Failure 401 {object} respond.ErrorResponse
// @Router /alerts/check [get]
func (h *Handler) CheckAlerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserFrom(r.Context())
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	respond.WriteNoStore(w, http.StatusOK, AlertsResponse{Alerts: h.alerts.CheckAll(r.Context(), userID)})
}

// CheckMedicineAlerts returns the caller's medicine alerts. Alerts stay
// visible until their retention window closes.
// @Summary Check medicine alerts
// @Description Returns the caller's queued medicine alerts. Repeated polls within the retention window return the same alerts.
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} handler.AlertsResponse
// @Failure 401 {object} respond.ErrorResponse
// @Router /medicines/alerts/check [get]
func (h *Handler) CheckMedicineAlerts(w http.ResponseWriter, r *http.Request) {
	h.checkKind(w, r, reminder.KindMedicine)
}

// CheckAppointmentAlerts returns the caller's due appointments and marks
// them alerted.
// @Summary Check appointment alerts
// @Description Returns the caller's due appointment alerts and atomically marks them as alerted.
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} handler.AlertsResponse
// @Failure 401 {object} respond.ErrorResponse
// @Router /appointments/alerts/check [get]
func (h *Handler) CheckAppointmentAlerts(w http.ResponseWriter, r *http.Request) {
	h.checkKind(w, r, reminder.KindAppointment)
}

func (h *Handler) checkKind(w http.ResponseWriter, r *http.Request, kind reminder.Kind) {
	userID, ok := auth.UserFrom(r.Context())
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return
	}
	respond.WriteNoStore(w, http.StatusOK, AlertsResponse{Alerts: h.alerts.Check(r.Context(), userID, kind)})
}
