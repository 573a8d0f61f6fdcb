package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/examgate/examgate/internal/database"
)

// StudentRepository reads student and assignment records from the
// exam-center database.
type StudentRepository struct {
	pool *Pool
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(pool *Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetAssignment fetches the student's current exam/seat assignment.
func (r *StudentRepository) GetAssignment(ctx context.Context, studentID string) (*database.StudentAssignment, error) {
	var a database.StudentAssignment
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT s.student_id, s.full_name, s.college,
		       a.exam_name, a.room, a.seat_number, a.device_number
		FROM students s
		JOIN exam_assignments a ON a.student_id = s.student_id
		WHERE s.student_id = ?
	`, studentID).Scan(&a.StudentID, &a.FullName, &a.College, &a.ExamName, &a.Room, &a.SeatNumber, &a.DeviceNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assignment for student %s: %w", studentID, database.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query assignment: %w", err)
	}
	return &a, nil
}

// ListByCollege returns all assignments of a college, ordered by room and seat.
func (r *StudentRepository) ListByCollege(ctx context.Context, college string) ([]database.StudentAssignment, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT s.student_id, s.full_name, s.college,
		       a.exam_name, a.room, a.seat_number, a.device_number
		FROM students s
		JOIN exam_assignments a ON a.student_id = s.student_id
		WHERE s.college = ?
		ORDER BY a.room, a.seat_number
	`, college)
	if err != nil {
		return nil, fmt.Errorf("query assignments by college: %w", err)
	}
	defer rows.Close()

	return scanAssignments(rows)
}

// SearchByName finds students whose name contains the query, ignoring
// case and diacritics. An empty college searches all colleges.
func (r *StudentRepository) SearchByName(ctx context.Context, name, college string) ([]database.StudentAssignment, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT s.student_id, s.full_name, s.college,
		       a.exam_name, a.room, a.seat_number, a.device_number
		FROM students s
		JOIN exam_assignments a ON a.student_id = s.student_id
		WHERE (? = '' OR s.college = ?)
	`, college, college)
	if err != nil {
		return nil, fmt.Errorf("query students for name search: %w", err)
	}
	defer rows.Close()

	all, err := scanAssignments(rows)
	if err != nil {
		return nil, err
	}

	// Accent and case folding is not expressible portably in SQL, so the
	// candidate set is filtered here.
	needle := database.FoldName(name)
	var matched []database.StudentAssignment
	for _, a := range all {
		if strings.Contains(database.FoldName(a.FullName), needle) {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

func scanAssignments(rows *sql.Rows) ([]database.StudentAssignment, error) {
	var out []database.StudentAssignment
	for rows.Next() {
		var a database.StudentAssignment
		if err := rows.Scan(&a.StudentID, &a.FullName, &a.College, &a.ExamName, &a.Room, &a.SeatNumber, &a.DeviceNumber); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
