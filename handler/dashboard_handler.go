package handler

import (
	"net/http"
	"time"

	"complaintdesk/repository"
)

// DashboardHandler serves aggregate complaint statistics
type DashboardHandler struct {
	complaintRepo *repository.ComplaintRepository
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(complaintRepo *repository.ComplaintRepository) *DashboardHandler {
	return &DashboardHandler{complaintRepo: complaintRepo}
}

// GetStats handles GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.complaintRepo.GetDashboardStats(time.Now().UTC())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}
