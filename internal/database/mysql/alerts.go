package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/examgate/examgate/internal/database"
)

// AlertRepository logs cheating alerts raised during exams.
type AlertRepository struct {
	pool *Pool
}

// NewAlertRepository creates a new alert repository.
func NewAlertRepository(pool *Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

// Insert records an alert and returns its generated ID.
func (r *AlertRepository) Insert(ctx context.Context, studentID string, deviceID int, kind, note string) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO alerts (id, student_id, device_id, kind, note, created_at)
		VALUES (?, ?, ?, ?, ?, NOW())
	`, id, studentID, deviceID, kind, note)
	if err != nil {
		return "", fmt.Errorf("insert alert: %w", err)
	}
	return id, nil
}

// ListByStudent returns all alerts logged against a student, newest first.
func (r *AlertRepository) ListByStudent(ctx context.Context, studentID string) ([]database.Alert, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, student_id, device_id, kind, note, created_at
		FROM alerts
		WHERE student_id = ?
		ORDER BY created_at DESC
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("query alerts by student: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// ListRecent returns the most recent alerts across all students.
func (r *AlertRepository) ListRecent(ctx context.Context, limit int) ([]database.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, student_id, device_id, kind, note, created_at
		FROM alerts
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent alerts: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

func scanAlerts(rows *sql.Rows) ([]database.Alert, error) {
	var alerts []database.Alert
	for rows.Next() {
		var a database.Alert
		if err := rows.Scan(&a.ID, &a.StudentID, &a.DeviceID, &a.Kind, &a.Note, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
