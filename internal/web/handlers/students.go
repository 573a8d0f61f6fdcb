package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/examgate/examgate/internal/database"
)

// StudentDirectory reads student assignment records.
type StudentDirectory interface {
	GetAssignment(ctx context.Context, studentID string) (*database.StudentAssignment, error)
	ListByCollege(ctx context.Context, college string) ([]database.StudentAssignment, error)
	SearchByName(ctx context.Context, name, college string) ([]database.StudentAssignment, error)
}

// StudentHandler handles student assignment endpoints.
type StudentHandler struct {
	students StudentDirectory
}

// NewStudentHandler creates a new student handler.
func NewStudentHandler(students StudentDirectory) *StudentHandler {
	return &StudentHandler{students: students}
}

// GetAssignment handles GET /students/{studentID}/assignment.
func (h *StudentHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	assignment, err := h.students.GetAssignment(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assignment)
}

// List handles GET /students?college=...&name=...
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	college := r.URL.Query().Get("college")
	name := r.URL.Query().Get("name")

	var (
		assignments []database.StudentAssignment
		err         error
	)
	switch {
	case name != "":
		assignments, err = h.students.SearchByName(r.Context(), name, college)
	case college != "":
		assignments, err = h.students.ListByCollege(r.Context(), college)
	default:
		respondError(w, http.StatusBadRequest, "college or name query parameter is required")
		return
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if assignments == nil {
		assignments = []database.StudentAssignment{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"students": assignments})
}
