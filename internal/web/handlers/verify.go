package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/examgate/examgate/internal/verify"
)

// VerifyHandler handles the identity verification endpoint.
type VerifyHandler struct {
	service   *verify.Service
	maxUpload int64
}

// NewVerifyHandler creates a new verify handler.
func NewVerifyHandler(service *verify.Service, maxUpload int64) *VerifyHandler {
	return &VerifyHandler{service: service, maxUpload: maxUpload}
}

// Verify handles POST /identity/verify. The multipart form carries
// student_id, device_id and the captured image.
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	studentID := r.FormValue("student_id")
	deviceID, err := strconv.Atoi(r.FormValue("device_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "device_id must be an integer")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	result, err := h.service.Verify(r.Context(), studentID, deviceID, header.Filename, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("identity check: student=%s device_ok=%t face_match=%t confidence=%.4f",
		sanitizeForLog(studentID), result.DeviceCheck.IsCorrect, result.FaceCheck.IsMatch, result.FaceCheck.Confidence)

	respondJSON(w, http.StatusOK, result)
}
