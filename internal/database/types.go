// Package database defines the storage records and repository contracts
// shared by the PostgreSQL faceprint store and the exam-center MySQL
// database.
package database

import (
	"context"
	"time"
)

// Faceprint is a stored face embedding keyed by student identifier.
// At most one faceprint exists per student (unique key on StudentID).
type Faceprint struct {
	ID        int64
	StudentID string
	College   string // coarse partition used to scope similarity search
	Embedding []float32
	CreatedAt time.Time
}

// SimilarMatch is one ranked result of a similarity search.
type SimilarMatch struct {
	StudentID  string
	College    string
	CreatedAt  time.Time
	Distance   float64
	Similarity float64 // (1 - min(Distance, 1)) * 100, in [0, 100]
}

// StudentAssignment is the student's current exam/seat assignment as
// recorded in the exam-center database.
type StudentAssignment struct {
	StudentID    string `json:"student_id"`
	FullName     string `json:"full_name"`
	College      string `json:"college"`
	ExamName     string `json:"exam_name"`
	Room         string `json:"room"`
	SeatNumber   int    `json:"seat_number"`
	DeviceNumber int    `json:"device_number"`
}

// Device is an exam terminal in the device registry.
type Device struct {
	ID           int64     `json:"id"`
	Number       int       `json:"number"`
	Room         string    `json:"room"`
	Active       bool      `json:"active"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Alert is a cheating alert logged against a student during an exam.
type Alert struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	DeviceID  int       `json:"device_id"`
	Kind      string    `json:"kind"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// User is an administrative account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// FaceprintStore owns faceprint persistence. All mutating operations are
// durable immediately and every read round-trips to storage.
type FaceprintStore interface {
	Insert(ctx context.Context, studentID, college string, embedding []float32) (int64, error)
	UpdateVector(ctx context.Context, studentID string, embedding []float32) error
	Delete(ctx context.Context, studentID string) error
	GetByStudent(ctx context.Context, studentID string) (*Faceprint, error)
	List(ctx context.Context) ([]Faceprint, error)
	SearchSimilar(ctx context.Context, embedding []float32, threshold float64, limit int, college string) ([]SimilarMatch, error)
}

// AssignmentReader fetches a student's current exam assignment.
type AssignmentReader interface {
	GetAssignment(ctx context.Context, studentID string) (*StudentAssignment, error)
}
