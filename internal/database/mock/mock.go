// Package mock provides in-memory implementations of the database
// contracts for testing.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/examgate/examgate/internal/database"
	"github.com/examgate/examgate/internal/faceid"
)

// FaceprintStore is an in-memory database.FaceprintStore.
type FaceprintStore struct {
	mu     sync.RWMutex
	nextID int64
	prints map[string]*database.Faceprint

	// Error injection
	InsertError error
	GetError    error
	SearchError error
}

// NewFaceprintStore creates an empty in-memory store.
func NewFaceprintStore() *FaceprintStore {
	return &FaceprintStore{
		nextID: 1,
		prints: make(map[string]*database.Faceprint),
	}
}

func (s *FaceprintStore) Insert(ctx context.Context, studentID, college string, embedding []float32) (int64, error) {
	if s.InsertError != nil {
		return 0, s.InsertError
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prints[studentID]; ok {
		return 0, database.ErrDuplicate
	}
	id := s.nextID
	s.nextID++
	s.prints[studentID] = &database.Faceprint{
		ID:        id,
		StudentID: studentID,
		College:   college,
		Embedding: append([]float32(nil), embedding...),
		CreatedAt: time.Now(),
	}
	return id, nil
}

func (s *FaceprintStore) UpdateVector(ctx context.Context, studentID string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fp, ok := s.prints[studentID]
	if !ok {
		return database.ErrNotFound
	}
	fp.Embedding = append([]float32(nil), embedding...)
	return nil
}

func (s *FaceprintStore) Delete(ctx context.Context, studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prints[studentID]; !ok {
		return database.ErrNotFound
	}
	delete(s.prints, studentID)
	return nil
}

func (s *FaceprintStore) GetByStudent(ctx context.Context, studentID string) (*database.Faceprint, error) {
	if s.GetError != nil {
		return nil, s.GetError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	fp, ok := s.prints[studentID]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *fp
	cp.Embedding = append([]float32(nil), fp.Embedding...)
	return &cp, nil
}

func (s *FaceprintStore) List(ctx context.Context) ([]database.Faceprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]database.Faceprint, 0, len(s.prints))
	for _, fp := range s.prints {
		cp := *fp
		cp.Embedding = append([]float32(nil), fp.Embedding...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *FaceprintStore) SearchSimilar(ctx context.Context, embedding []float32, threshold float64, limit int, college string) ([]database.SimilarMatch, error) {
	if s.SearchError != nil {
		return nil, s.SearchError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []database.SimilarMatch
	for _, fp := range s.prints {
		if college != "" && fp.College != college {
			continue
		}
		d, err := faceid.Distance(embedding, fp.Embedding)
		if err != nil {
			return nil, err
		}
		if d > threshold {
			continue
		}
		normalized := d
		if normalized > 1 {
			normalized = 1
		}
		matches = append(matches, database.SimilarMatch{
			StudentID:  fp.StudentID,
			College:    fp.College,
			CreatedAt:  fp.CreatedAt,
			Distance:   d,
			Similarity: (1 - normalized) * 100,
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// AssignmentReader is an in-memory database.AssignmentReader.
type AssignmentReader struct {
	mu          sync.RWMutex
	assignments map[string]*database.StudentAssignment

	GetError error
}

// NewAssignmentReader creates an empty in-memory assignment reader.
func NewAssignmentReader() *AssignmentReader {
	return &AssignmentReader{
		assignments: make(map[string]*database.StudentAssignment),
	}
}

// AddAssignment seeds an assignment record.
func (r *AssignmentReader) AddAssignment(a database.StudentAssignment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[a.StudentID] = &a
}

func (r *AssignmentReader) GetAssignment(ctx context.Context, studentID string) (*database.StudentAssignment, error) {
	if r.GetError != nil {
		return nil, r.GetError
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.assignments[studentID]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *a
	return &cp, nil
}
