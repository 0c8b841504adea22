package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"complaintdesk/models"
	"complaintdesk/repository"
	"complaintdesk/service"
)

// ComplaintHandler handles HTTP requests for complaints
type ComplaintHandler struct {
	service    *service.ComplaintService
	dispatcher *service.AssignmentService
	actionRepo *repository.ActionRepository
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(
	svc *service.ComplaintService,
	dispatcher *service.AssignmentService,
	actionRepo *repository.ActionRepository,
) *ComplaintHandler {
	return &ComplaintHandler{
		service:    svc,
		dispatcher: dispatcher,
		actionRepo: actionRepo,
	}
}

// CreateComplaint handles POST /api/complaints
func (h *ComplaintHandler) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req models.CreateComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	complaint, err := h.service.Create(r.Context(), &req, actor)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, complaint)
}

// ListComplaints handles GET /api/complaints
func (h *ComplaintHandler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	complaints, err := h.service.List(actor)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if complaints == nil {
		complaints = []models.Complaint{}
	}
	respondWithJSON(w, http.StatusOK, complaints)
}

// GetComplaint handles GET /api/complaints/{id}
func (h *ComplaintHandler) GetComplaint(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	complaintID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	complaint, err := h.service.Get(complaintID, actor)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, complaint)
}

// UpdateComplaint handles PUT /api/complaints/{id}
func (h *ComplaintHandler) UpdateComplaint(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	complaintID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	complaint, err := h.service.Update(complaintID, actor, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, complaint)
}

// SetStatus handles POST /api/complaints/{id}/status
func (h *ComplaintHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	complaintID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	complaint, err := h.service.SetStatus(complaintID, actor, req.Status)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, complaint)
}

// AssignComplaint handles POST /api/complaints/{id}/assign.
// Without an assigned_to_id in the body, the dispatcher selects the
// least-loaded eligible agent; with one, the actor must be an admin.
func (h *ComplaintHandler) AssignComplaint(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	complaintID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	result, err := h.dispatcher.Assign(r.Context(), complaintID, actor, req.AssignedToID)
	if err != nil {
		if errors.Is(err, models.ErrNoEligibleAgent) {
			if complaint, gerr := h.service.Get(complaintID, actor); gerr == nil {
				h.dispatcher.NotifyAssignmentNeeded(complaint)
			}
			respondWithError(w, http.StatusConflict, "No eligible agent",
				"No suitable agent found for this complaint's branch and line of business")
			return
		}
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// ListActions handles GET /api/complaints/{id}/actions
func (h *ComplaintHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	complaintID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	// Visibility check rides on Get
	if _, err := h.service.Get(complaintID, actor); err != nil {
		respondWithServiceError(w, err)
		return
	}

	actions, err := h.actionRepo.ListByComplaint(complaintID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if actions == nil {
		actions = []models.ComplaintAction{}
	}
	respondWithJSON(w, http.StatusOK, actions)
}

// AddAction handles POST /api/complaints/{id}/actions
func (h *ComplaintHandler) AddAction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	complaintID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.AddActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	action, err := h.service.AddAction(complaintID, actor, req.Description)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, action)
}

// pathID extracts a numeric path variable, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Invalid "+name+" path parameter")
		return 0, false
	}
	return id, true
}
