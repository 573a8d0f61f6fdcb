package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/examgate/examgate/internal/database"
)

// DeviceRegistry manages exam terminals.
type DeviceRegistry interface {
	List(ctx context.Context) ([]database.Device, error)
	Get(ctx context.Context, id int64) (*database.Device, error)
	Register(ctx context.Context, number int, room string) (int64, error)
	Deactivate(ctx context.Context, id int64) error
}

// DeviceHandler handles device registry endpoints.
type DeviceHandler struct {
	devices DeviceRegistry
}

// NewDeviceHandler creates a new device handler.
func NewDeviceHandler(devices DeviceRegistry) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

// List handles GET /devices.
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.devices.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if devices == nil {
		devices = []database.Device{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"devices": devices})
}

// Get handles GET /devices/{id}.
func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "device id must be an integer")
		return
	}

	device, err := h.devices.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, device)
}

type registerDeviceRequest struct {
	Number int    `json:"number"`
	Room   string `json:"room"`
}

// Register handles POST /devices.
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Number <= 0 || req.Room == "" {
		respondError(w, http.StatusBadRequest, "number and room are required")
		return
	}

	id, err := h.devices.Register(r.Context(), req.Number, req.Room)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// Deactivate handles DELETE /devices/{id}.
func (h *DeviceHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "device id must be an integer")
		return
	}

	if err := h.devices.Deactivate(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}
