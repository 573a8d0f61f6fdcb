package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/examgate/examgate/internal/database"
	"github.com/examgate/examgate/internal/verify"
)

// FaceprintHandler handles enrollment, listing and similarity search.
type FaceprintHandler struct {
	service   *verify.Service
	store     database.FaceprintStore
	maxUpload int64
}

// NewFaceprintHandler creates a new faceprint handler.
func NewFaceprintHandler(service *verify.Service, store database.FaceprintStore, maxUpload int64) *FaceprintHandler {
	return &FaceprintHandler{service: service, store: store, maxUpload: maxUpload}
}

// faceprintInfo is the client-facing view of a stored faceprint. The raw
// embedding is never exposed.
type faceprintInfo struct {
	ID        int64  `json:"id"`
	StudentID string `json:"student_id"`
	College   string `json:"college"`
	CreatedAt string `json:"created_at"`
}

func toFaceprintInfo(fp database.Faceprint) faceprintInfo {
	return faceprintInfo{
		ID:        fp.ID,
		StudentID: fp.StudentID,
		College:   fp.College,
		CreatedAt: fp.CreatedAt.Format(time.RFC3339),
	}
}

// Enroll handles POST /faceprints: multipart {student_id, college, image}.
func (h *FaceprintHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	studentID := r.FormValue("student_id")
	college := r.FormValue("college")

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	id, err := h.service.Enroll(r.Context(), studentID, college, header.Filename, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// Reenroll handles PUT /faceprints/{studentID}: replaces the stored
// embedding from a new image, leaving the college untouched.
func (h *FaceprintHandler) Reenroll(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	if err := h.service.Reenroll(r.Context(), studentID, header.Filename, file); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"student_id": studentID})
}

// List handles GET /faceprints.
func (h *FaceprintHandler) List(w http.ResponseWriter, r *http.Request) {
	prints, err := h.store.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	infos := make([]faceprintInfo, 0, len(prints))
	for _, fp := range prints {
		infos = append(infos, toFaceprintInfo(fp))
	}
	respondJSON(w, http.StatusOK, map[string]any{"faceprints": infos})
}

// Get handles GET /faceprints/{studentID}.
func (h *FaceprintHandler) Get(w http.ResponseWriter, r *http.Request) {
	fp, err := h.store.GetByStudent(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toFaceprintInfo(*fp))
}

// Delete handles DELETE /faceprints/{studentID}.
func (h *FaceprintHandler) Delete(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")
	if err := h.store.Delete(r.Context(), studentID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"student_id": studentID})
}

// searchMatch is one ranked result of a similarity search.
type searchMatch struct {
	StudentID  string  `json:"student_id"`
	College    string  `json:"college"`
	CreatedAt  string  `json:"created_at"`
	Similarity float64 `json:"similarity"`
}

// Search handles POST /faceprints/search: multipart {image, threshold,
// limit, college?} returning enrolled students ranked by similarity.
func (h *FaceprintHandler) Search(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	threshold := 0.0
	if v := r.FormValue("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			respondError(w, http.StatusBadRequest, "threshold must be a positive number")
			return
		}
		threshold = f
	}

	limit := 0
	if v := r.FormValue("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	matches, err := h.service.SearchByImage(r.Context(), header.Filename, file, threshold, limit, r.FormValue("college"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	results := make([]searchMatch, 0, len(matches))
	for _, m := range matches {
		results = append(results, searchMatch{
			StudentID:  m.StudentID,
			College:    m.College,
			CreatedAt:  m.CreatedAt.Format(time.RFC3339),
			Similarity: m.Similarity,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"matches": results})
}
