// Package verify orchestrates identity verification: the terminal
// assignment check and the face match over a freshly captured image.
package verify

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/examgate/examgate/internal/database"
	"github.com/examgate/examgate/internal/faceid"
)

// EmbeddingExtractor converts an image file into a face embedding.
type EmbeddingExtractor interface {
	Extract(ctx context.Context, path string) ([]float32, error)
}

// DeviceCheck reports whether the claimed terminal matches the student's
// assigned one. A mismatch is reported, never fatal.
type DeviceCheck struct {
	IsCorrect       bool `json:"is_correct"`
	CorrectDeviceID int  `json:"correct_device_id"`
}

// FaceCheck is the face match decision with its confidence score.
type FaceCheck struct {
	IsMatch    bool    `json:"is_match"`
	Confidence float64 `json:"confidence"`
}

// Result is the combined verification outcome. It is transient and never
// persisted.
type Result struct {
	StudentData *database.StudentAssignment `json:"student_data"`
	DeviceCheck DeviceCheck                 `json:"device_check"`
	FaceCheck   FaceCheck                   `json:"face_check"`
}

// Service coordinates assignment lookup, faceprint storage and embedding
// extraction. It never mutates faceprints directly; all persistence goes
// through the store's interface.
type Service struct {
	assignments database.AssignmentReader
	faceprints  database.FaceprintStore
	extractor   EmbeddingExtractor
	tolerance   float64
}

// NewService wires the verification service. A non-positive tolerance
// falls back to the default.
func NewService(assignments database.AssignmentReader, faceprints database.FaceprintStore, extractor EmbeddingExtractor, tolerance float64) *Service {
	if tolerance <= 0 {
		tolerance = faceid.DefaultTolerance
	}
	return &Service{
		assignments: assignments,
		faceprints:  faceprints,
		extractor:   extractor,
		tolerance:   tolerance,
	}
}

// withTempImage persists the upload to a per-request temporary file,
// invokes fn with its path, and removes the file on every exit path.
func withTempImage(filename string, image io.Reader, fn func(path string) error) error {
	dir, err := os.MkdirTemp("", "examgate-upload-*")
	if err != nil {
		return fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(dir)

	ext := strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(dir, uuid.NewString()+ext)

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := io.Copy(out, image); err != nil {
		out.Close()
		return fmt.Errorf("saving uploaded image: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	return fn(path)
}

// Verify runs the full identity check for a student at a claimed terminal.
func (s *Service) Verify(ctx context.Context, studentID string, deviceID int, filename string, image io.Reader) (*Result, error) {
	if studentID == "" {
		return nil, fmt.Errorf("%w: student_id is required", faceid.ErrValidation)
	}
	if deviceID <= 0 {
		return nil, fmt.Errorf("%w: device_id is required", faceid.ErrValidation)
	}
	if filename == "" || image == nil {
		return nil, fmt.Errorf("%w: image is required", faceid.ErrValidation)
	}

	assignment, err := s.assignments.GetAssignment(ctx, studentID)
	if err != nil {
		return nil, err
	}

	result := &Result{
		StudentData: assignment,
		DeviceCheck: DeviceCheck{
			IsCorrect:       deviceID == assignment.DeviceNumber,
			CorrectDeviceID: assignment.DeviceNumber,
		},
	}

	err = withTempImage(filename, image, func(path string) error {
		stored, err := s.faceprints.GetByStudent(ctx, studentID)
		if err != nil {
			return err
		}

		captured, err := s.extractor.Extract(ctx, path)
		if err != nil {
			return err
		}

		match, confidence, err := faceid.Compare(stored.Embedding, captured, s.tolerance)
		if err != nil {
			return err
		}

		result.FaceCheck = FaceCheck{
			IsMatch:    match,
			Confidence: faceid.RoundConfidence(confidence),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Enroll extracts an embedding from the image and stores it as the
// student's faceprint. Enrolling an already-enrolled student returns
// database.ErrDuplicate; callers choose Reenroll instead.
func (s *Service) Enroll(ctx context.Context, studentID, college, filename string, image io.Reader) (int64, error) {
	if studentID == "" {
		return 0, fmt.Errorf("%w: student_id is required", faceid.ErrValidation)
	}
	if filename == "" || image == nil {
		return 0, fmt.Errorf("%w: image is required", faceid.ErrValidation)
	}

	var id int64
	err := withTempImage(filename, image, func(path string) error {
		vec, err := s.extractor.Extract(ctx, path)
		if err != nil {
			return err
		}
		id, err = s.faceprints.Insert(ctx, studentID, college, vec)
		return err
	})
	return id, err
}

// Reenroll replaces the student's stored embedding with one extracted
// from a new image. The college partition is left untouched.
func (s *Service) Reenroll(ctx context.Context, studentID, filename string, image io.Reader) error {
	if studentID == "" {
		return fmt.Errorf("%w: student_id is required", faceid.ErrValidation)
	}
	if filename == "" || image == nil {
		return fmt.Errorf("%w: image is required", faceid.ErrValidation)
	}

	return withTempImage(filename, image, func(path string) error {
		vec, err := s.extractor.Extract(ctx, path)
		if err != nil {
			return err
		}
		return s.faceprints.UpdateVector(ctx, studentID, vec)
	})
}

// SearchByImage extracts an embedding from the image and returns enrolled
// students ranked by similarity, optionally scoped to one college.
func (s *Service) SearchByImage(ctx context.Context, filename string, image io.Reader, threshold float64, limit int, college string) ([]database.SimilarMatch, error) {
	if filename == "" || image == nil {
		return nil, fmt.Errorf("%w: image is required", faceid.ErrValidation)
	}
	if threshold <= 0 {
		threshold = s.tolerance
	}
	if limit <= 0 {
		limit = 10
	}

	var matches []database.SimilarMatch
	err := withTempImage(filename, image, func(path string) error {
		vec, err := s.extractor.Extract(ctx, path)
		if err != nil {
			return err
		}
		matches, err = s.faceprints.SearchSimilar(ctx, vec, threshold, limit, college)
		return err
	})
	return matches, err
}
