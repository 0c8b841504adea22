package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"complaintdesk/middleware"
	"complaintdesk/models"
	"complaintdesk/service"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, errorType, message string) {
	respondWithJSON(w, statusCode, map[string]interface{}{
		"error":   errorType,
		"message": message,
		"code":    statusCode,
	})
}

// respondWithServiceError translates the service error taxonomy into HTTP
// status codes. Anything unrecognized is a 500 with a generic message.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		respondWithError(w, http.StatusBadRequest, "Validation error", err.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
	case errors.Is(err, models.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "Forbidden", "You do not have permission to perform this action")
	case errors.Is(err, models.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, models.ErrDuplicateEmail):
		respondWithError(w, http.StatusConflict, "Conflict", "A user with this email already exists")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Something went wrong")
	}
}

func actorFromRequest(w http.ResponseWriter, r *http.Request) (service.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
	}
	return actor, ok
}
