package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/examgate/examgate/internal/database"
)

// UserRepository reads administrative accounts.
type UserRepository struct {
	pool *Pool
}

// NewUserRepository creates a new user repository.
func NewUserRepository(pool *Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByUsername fetches an admin account by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*database.User, error) {
	var u database.User
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users
		WHERE username = ?
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", username, database.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
