package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/examgate/examgate/internal/database"
	"github.com/examgate/examgate/internal/database/mock"
	"github.com/examgate/examgate/internal/verify"
)

const testMaxUpload = 5 << 20

// fakeExtractor returns a fixed embedding regardless of input.
type fakeExtractor struct {
	vector []float32
	err    error
}

func (e *fakeExtractor) Extract(ctx context.Context, path string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vector, nil
}

// vecWithDistance builds a 128-dimensional vector at Euclidean distance d
// from the zero vector.
func vecWithDistance(d float64) []float32 {
	v := make([]float32, 128)
	v[0] = float32(d)
	return v
}

// testEnv bundles the in-memory stores behind a verification service.
type testEnv struct {
	assignments *mock.AssignmentReader
	prints      *mock.FaceprintStore
	extractor   *fakeExtractor
	service     *verify.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		assignments: mock.NewAssignmentReader(),
		prints:      mock.NewFaceprintStore(),
		extractor:   &fakeExtractor{vector: vecWithDistance(0)},
	}
	env.service = verify.NewService(env.assignments, env.prints, env.extractor, 0.6)
	return env
}

func (env *testEnv) seedStudent(t *testing.T, studentID string, deviceNumber int) {
	t.Helper()
	env.assignments.AddAssignment(database.StudentAssignment{
		StudentID:    studentID,
		FullName:     "Test Student",
		College:      "engineering",
		ExamName:     "Calculus",
		Room:         "A-101",
		SeatNumber:   4,
		DeviceNumber: deviceNumber,
	})
}

// multipartRequest builds a multipart request with the given form fields
// and one image file part.
func multipartRequest(t *testing.T, method, target string, fields map[string]string, filename string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("writing form field %s: %v", k, err)
		}
	}
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("creating file part: %v", err)
		}
		if _, err := io.WriteString(part, "fake image bytes"); err != nil {
			t.Fatalf("writing file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// decodeBody decodes a JSON response body into dst.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}
