package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newFaceprintRouter(env *testEnv) chi.Router {
	h := NewFaceprintHandler(env.service, env.prints, testMaxUpload)
	r := chi.NewRouter()
	r.Post("/faceprints", h.Enroll)
	r.Get("/faceprints", h.List)
	r.Post("/faceprints/search", h.Search)
	r.Get("/faceprints/{studentID}", h.Get)
	r.Put("/faceprints/{studentID}", h.Reenroll)
	r.Delete("/faceprints/{studentID}", h.Delete)
	return r
}

func TestEnrollHandler(t *testing.T) {
	env := newTestEnv(t)
	router := newFaceprintRouter(env)

	req := multipartRequest(t, http.MethodPost, "/faceprints", map[string]string{
		"student_id": "S-2002",
		"college":    "medicine",
	}, "face.png")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]int64
	decodeBody(t, rec, &resp)
	if resp["id"] == 0 {
		t.Error("response id = 0")
	}

	fp, err := env.prints.GetByStudent(context.Background(), "S-2002")
	if err != nil {
		t.Fatalf("faceprint not stored: %v", err)
	}
	if fp.College != "medicine" {
		t.Errorf("College = %q, want medicine", fp.College)
	}
}

func TestEnrollHandlerDuplicate(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.prints.Insert(context.Background(), "S-2002", "medicine", vecWithDistance(0)); err != nil {
		t.Fatal(err)
	}
	router := newFaceprintRouter(env)

	req := multipartRequest(t, http.MethodPost, "/faceprints", map[string]string{
		"student_id": "S-2002",
		"college":    "medicine",
	}, "face.png")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestEnrollHandlerMissingStudent(t *testing.T) {
	env := newTestEnv(t)
	router := newFaceprintRouter(env)

	req := multipartRequest(t, http.MethodPost, "/faceprints", map[string]string{
		"college": "medicine",
	}, "face.png")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestReenrollHandler(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.prints.Insert(context.Background(), "S-2002", "medicine", vecWithDistance(0.3)); err != nil {
		t.Fatal(err)
	}
	env.extractor.vector = vecWithDistance(0.9)
	router := newFaceprintRouter(env)

	req := multipartRequest(t, http.MethodPut, "/faceprints/S-2002", nil, "face.png")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	fp, err := env.prints.GetByStudent(context.Background(), "S-2002")
	if err != nil {
		t.Fatal(err)
	}
	if fp.Embedding[0] != 0.9 {
		t.Errorf("embedding[0] = %v, want 0.9 after reenroll", fp.Embedding[0])
	}
}

func TestGetAndDeleteFaceprint(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.prints.Insert(context.Background(), "S-2002", "medicine", vecWithDistance(0)); err != nil {
		t.Fatal(err)
	}
	router := newFaceprintRouter(env)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/faceprints/S-2002", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", rec.Code)
	}

	var info faceprintInfo
	decodeBody(t, rec, &info)
	if info.StudentID != "S-2002" || info.College != "medicine" {
		t.Errorf("faceprint info = %+v", info)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/faceprints/S-2002", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/faceprints/S-2002", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", rec.Code)
	}
}

func TestSearchHandler(t *testing.T) {
	env := newTestEnv(t)
	seed := map[string]float64{"S-1": 0.1, "S-2": 0.5, "S-3": 0.9}
	for id, d := range seed {
		if _, err := env.prints.Insert(context.Background(), id, "engineering", vecWithDistance(d)); err != nil {
			t.Fatal(err)
		}
	}
	router := newFaceprintRouter(env)

	req := multipartRequest(t, http.MethodPost, "/faceprints/search", map[string]string{
		"threshold": "0.6",
		"limit":     "10",
	}, "probe.jpg")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Matches []searchMatch `json:"matches"`
	}
	decodeBody(t, rec, &resp)

	if len(resp.Matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(resp.Matches))
	}
	if resp.Matches[0].StudentID != "S-1" {
		t.Errorf("first match = %s, want S-1", resp.Matches[0].StudentID)
	}
	if resp.Matches[0].Similarity <= resp.Matches[1].Similarity {
		t.Error("matches not ordered by descending similarity")
	}
}

func TestSearchHandlerBadParams(t *testing.T) {
	env := newTestEnv(t)
	router := newFaceprintRouter(env)

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"negative threshold", map[string]string{"threshold": "-0.5"}},
		{"non-numeric threshold", map[string]string{"threshold": "high"}},
		{"zero limit", map[string]string{"limit": "0"}},
		{"non-numeric limit", map[string]string{"limit": "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := multipartRequest(t, http.MethodPost, "/faceprints/search", tt.fields, "probe.jpg")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}
