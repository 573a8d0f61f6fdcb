package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/examgate/examgate/internal/database"
)

// AlertLog records and lists cheating alerts.
type AlertLog interface {
	Insert(ctx context.Context, studentID string, deviceID int, kind, note string) (string, error)
	ListByStudent(ctx context.Context, studentID string) ([]database.Alert, error)
	ListRecent(ctx context.Context, limit int) ([]database.Alert, error)
}

// AlertHandler handles cheating alert endpoints.
type AlertHandler struct {
	alerts AlertLog
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(alerts AlertLog) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

type createAlertRequest struct {
	StudentID string `json:"student_id"`
	DeviceID  int    `json:"device_id"`
	Kind      string `json:"kind"`
	Note      string `json:"note"`
}

// Create handles POST /alerts.
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.StudentID == "" || req.Kind == "" {
		respondError(w, http.StatusBadRequest, "student_id and kind are required")
		return
	}

	id, err := h.alerts.Insert(r.Context(), req.StudentID, req.DeviceID, req.Kind, req.Note)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// List handles GET /alerts?student_id=...&limit=...
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		alerts []database.Alert
		err    error
	)
	if studentID := r.URL.Query().Get("student_id"); studentID != "" {
		alerts, err = h.alerts.ListByStudent(r.Context(), studentID)
	} else {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			limit, err = strconv.Atoi(v)
			if err != nil || limit <= 0 {
				respondError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
		}
		alerts, err = h.alerts.ListRecent(r.Context(), limit)
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if alerts == nil {
		alerts = []database.Alert{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}
