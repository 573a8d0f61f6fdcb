package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/examgate/examgate/internal/database"
)

// DeviceRepository manages the exam terminal registry.
type DeviceRepository struct {
	pool *Pool
}

// NewDeviceRepository creates a new device repository.
func NewDeviceRepository(pool *Pool) *DeviceRepository {
	return &DeviceRepository{pool: pool}
}

// List returns all registered devices ordered by room and number.
func (r *DeviceRepository) List(ctx context.Context) ([]database.Device, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, number, room, active, registered_at
		FROM devices
		ORDER BY room, number
	`)
	if err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}
	defer rows.Close()

	var devices []database.Device
	for rows.Next() {
		var d database.Device
		if err := rows.Scan(&d.ID, &d.Number, &d.Room, &d.Active, &d.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// Get returns a device by ID.
func (r *DeviceRepository) Get(ctx context.Context, id int64) (*database.Device, error) {
	var d database.Device
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, number, room, active, registered_at
		FROM devices
		WHERE id = ?
	`, id).Scan(&d.ID, &d.Number, &d.Room, &d.Active, &d.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("device %d: %w", id, database.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query device: %w", err)
	}
	return &d, nil
}

// Register adds a device to the registry and returns its ID.
func (r *DeviceRepository) Register(ctx context.Context, number int, room string) (int64, error) {
	result, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO devices (number, room, active, registered_at)
		VALUES (?, ?, TRUE, NOW())
	`, number, room)
	if err != nil {
		return 0, fmt.Errorf("insert device: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("device insert id: %w", err)
	}
	return id, nil
}

// Deactivate marks a device as out of service.
func (r *DeviceRepository) Deactivate(ctx context.Context, id int64) error {
	result, err := r.pool.db.ExecContext(ctx, "UPDATE devices SET active = FALSE WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deactivate device: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate device rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("device %d: %w", id, database.ErrNotFound)
	}
	return nil
}
