package handler

import (
	"net/http"

	"complaintdesk/models"
	"complaintdesk/service"
)

// SLAHandler exposes the escalation sweeps over HTTP for external schedulers.
type SLAHandler struct {
	slaService *service.SLAService
}

// NewSLAHandler creates a new SLA handler
func NewSLAHandler(slaService *service.SLAService) *SLAHandler {
	return &SLAHandler{slaService: slaService}
}

// RunReminder1H handles POST /api/sla/check-reminders.
// Runs the 1-hour reminder sweep for complaints unresolved past one hour.
func (h *SLAHandler) RunReminder1H(w http.ResponseWriter, r *http.Request) {
	h.runSweep(w, r, models.SweepReminder1H)
}

// RunReminder2H handles POST /api/sla/check-reminders-2h.
// Runs the 2-hour reminder sweep for complaints unresolved past two hours.
func (h *SLAHandler) RunReminder2H(w http.ResponseWriter, r *http.Request) {
	h.runSweep(w, r, models.SweepReminder2H)
}

// RunBreachCheck handles POST /api/sla/check-breaches.
// Runs the breach sweep for complaints past their due date.
func (h *SLAHandler) RunBreachCheck(w http.ResponseWriter, r *http.Request) {
	h.runSweep(w, r, models.SweepBreach)
}

func (h *SLAHandler) runSweep(w http.ResponseWriter, r *http.Request, kind models.SweepKind) {
	report, err := h.slaService.RunSweep(r.Context(), kind)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"report":  report,
	})
}

// RunAll handles POST /api/cron/run.
// Executes every sweep in order; intended for an external cron trigger.
func (h *SLAHandler) RunAll(w http.ResponseWriter, r *http.Request) {
	reports := h.slaService.RunAll(r.Context())
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"reports": reports,
	})
}
