package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"complaintdesk/models"
	"complaintdesk/repository"
)

// LookupHandler handles HTTP requests for branches, lines of business and
// complaint statuses.
type LookupHandler struct {
	branches *repository.BranchRepository
	lobs     *repository.LineOfBusinessRepository
	statuses *repository.StatusRepository
}

// NewLookupHandler creates a new lookup handler
func NewLookupHandler(
	branches *repository.BranchRepository,
	lobs *repository.LineOfBusinessRepository,
	statuses *repository.StatusRepository,
) *LookupHandler {
	return &LookupHandler{branches: branches, lobs: lobs, statuses: statuses}
}

func decodeLookup(w http.ResponseWriter, r *http.Request) (*models.UpsertLookupRequest, bool) {
	var req models.UpsertLookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return nil, false
	}
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Validation error", "Name is required")
		return nil, false
	}
	return &req, true
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ListBranches handles GET /api/branches
func (h *LookupHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.branches.ListBranches()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if branches == nil {
		branches = []models.Branch{}
	}
	respondWithJSON(w, http.StatusOK, branches)
}

// CreateBranch handles POST /api/branches
func (h *LookupHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLookup(w, r)
	if !ok {
		return
	}

	branch := &models.Branch{Name: req.Name, Description: nullable(req.Description)}
	if err := h.branches.CreateBranch(branch); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, branch)
}

// UpdateBranch handles PUT /api/branches/{id}
func (h *LookupHandler) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	branchID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	req, ok := decodeLookup(w, r)
	if !ok {
		return
	}

	branch := &models.Branch{BranchID: branchID, Name: req.Name, Description: nullable(req.Description)}
	if err := h.branches.UpdateBranch(branch); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, branch)
}

// DeleteBranch handles DELETE /api/branches/{id}
func (h *LookupHandler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	branchID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.branches.DeleteBranch(branchID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ListLinesOfBusiness handles GET /api/lines-of-business
func (h *LookupHandler) ListLinesOfBusiness(w http.ResponseWriter, r *http.Request) {
	lobs, err := h.lobs.ListLinesOfBusiness()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if lobs == nil {
		lobs = []models.LineOfBusiness{}
	}
	respondWithJSON(w, http.StatusOK, lobs)
}

// CreateLineOfBusiness handles POST /api/lines-of-business
func (h *LookupHandler) CreateLineOfBusiness(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLookup(w, r)
	if !ok {
		return
	}

	lob := &models.LineOfBusiness{Name: req.Name, Description: nullable(req.Description)}
	if err := h.lobs.CreateLineOfBusiness(lob); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, lob)
}

// UpdateLineOfBusiness handles PUT /api/lines-of-business/{id}
func (h *LookupHandler) UpdateLineOfBusiness(w http.ResponseWriter, r *http.Request) {
	lobID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	req, ok := decodeLookup(w, r)
	if !ok {
		return
	}

	lob := &models.LineOfBusiness{LineOfBusinessID: lobID, Name: req.Name, Description: nullable(req.Description)}
	if err := h.lobs.UpdateLineOfBusiness(lob); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lob)
}

// DeleteLineOfBusiness handles DELETE /api/lines-of-business/{id}
func (h *LookupHandler) DeleteLineOfBusiness(w http.ResponseWriter, r *http.Request) {
	lobID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.lobs.DeleteLineOfBusiness(lobID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ListStatuses handles GET /api/statuses
func (h *LookupHandler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.statuses.List()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if statuses == nil {
		statuses = []models.StatusRecord{}
	}
	respondWithJSON(w, http.StatusOK, statuses)
}
