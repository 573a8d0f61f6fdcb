package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/examgate/examgate/internal/database"
	"github.com/examgate/examgate/internal/faceid"
)

// multipartOverhead is headroom on top of the image size cap for the other
// multipart form fields.
const multipartOverhead = 1 << 20

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps a typed error from the core onto an HTTP
// status. Unknown errors are surfaced as an opaque service failure so
// storage and transport details never leak to clients.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, faceid.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrDuplicate):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, faceid.ErrImageProcessing):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, faceid.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "face encoder unavailable")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		log.Printf("service error: %v", err)
		respondError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
