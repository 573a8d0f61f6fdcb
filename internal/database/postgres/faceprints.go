package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/examgate/examgate/internal/database"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// FaceprintRepository provides PostgreSQL-backed faceprint storage.
// Every operation round-trips to the database; there is no caching layer.
type FaceprintRepository struct {
	pool *Pool
}

// NewFaceprintRepository creates a new faceprint repository.
func NewFaceprintRepository(pool *Pool) *FaceprintRepository {
	return &FaceprintRepository{pool: pool}
}

// Insert stores a new faceprint and returns its row ID. Inserting a
// student that already has a faceprint returns database.ErrDuplicate;
// concurrent inserts for the same student are resolved by the unique
// constraint, not by application locking.
func (r *FaceprintRepository) Insert(ctx context.Context, studentID, college string, embedding []float32) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO faceprints (student_id, college, embedding)
		VALUES ($1, $2, $3)
		RETURNING id
	`, studentID, college, pgvector.NewVector(embedding)).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return 0, fmt.Errorf("faceprint for student %s: %w", studentID, database.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert faceprint: %w", err)
	}
	return id, nil
}

// UpdateVector replaces the stored embedding, leaving the college untouched.
func (r *FaceprintRepository) UpdateVector(ctx context.Context, studentID string, embedding []float32) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE faceprints SET embedding = $2 WHERE student_id = $1
	`, studentID, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("update faceprint: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update faceprint rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("faceprint for student %s: %w", studentID, database.ErrNotFound)
	}
	return nil
}

// Delete removes a student's faceprint.
func (r *FaceprintRepository) Delete(ctx context.Context, studentID string) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM faceprints WHERE student_id = $1", studentID)
	if err != nil {
		return fmt.Errorf("delete faceprint: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete faceprint rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("faceprint for student %s: %w", studentID, database.ErrNotFound)
	}
	return nil
}

// GetByStudent retrieves a faceprint by student ID.
func (r *FaceprintRepository) GetByStudent(ctx context.Context, studentID string) (*database.Faceprint, error) {
	var fp database.Faceprint
	var vec pgvector.Vector

	err := r.pool.QueryRow(ctx, `
		SELECT id, student_id, college, embedding, created_at
		FROM faceprints
		WHERE student_id = $1
	`, studentID).Scan(&fp.ID, &fp.StudentID, &fp.College, &vec, &fp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("faceprint for student %s: %w", studentID, database.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query faceprint: %w", err)
	}

	fp.Embedding = vec.Slice()
	return &fp, nil
}

// List returns all stored faceprints.
func (r *FaceprintRepository) List(ctx context.Context) ([]database.Faceprint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, student_id, college, embedding, created_at
		FROM faceprints
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prints []database.Faceprint
	for rows.Next() {
		var fp database.Faceprint
		var vec pgvector.Vector
		if err := rows.Scan(&fp.ID, &fp.StudentID, &fp.College, &vec, &fp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan faceprint: %w", err)
		}
		fp.Embedding = vec.Slice()
		prints = append(prints, fp)
	}
	return prints, rows.Err()
}

// SearchSimilar finds faceprints within the given Euclidean distance of
// the query embedding, ordered by ascending distance (i.e. descending
// similarity). A non-empty college restricts the search to that college
// before ranking.
func (r *FaceprintRepository) SearchSimilar(ctx context.Context, embedding []float32, threshold float64, limit int, college string) ([]database.SimilarMatch, error) {
	vec := pgvector.NewVector(embedding)

	rows, err := r.pool.Query(ctx, `
		SELECT student_id, college, created_at, embedding <-> $1 AS distance
		FROM faceprints
		WHERE embedding <-> $1 <= $2
		  AND ($3 = '' OR college = $3)
		ORDER BY distance
		LIMIT $4
	`, vec, threshold, college, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []database.SimilarMatch
	for rows.Next() {
		var m database.SimilarMatch
		if err := rows.Scan(&m.StudentID, &m.College, &m.CreatedAt, &m.Distance); err != nil {
			return nil, fmt.Errorf("scan similarity match: %w", err)
		}
		normalized := m.Distance
		if normalized > 1 {
			normalized = 1
		}
		m.Similarity = (1 - normalized) * 100
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
