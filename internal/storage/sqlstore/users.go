package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/shoplist/internal/models"
	"github.com/mmynk/shoplist/internal/storage"
)

const userColumns = "id, user_name, display_name, password_hash, is_admin, created_at, updated_at"

// CreateUser inserts a new user into the database.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, s.q(query),
		user.ID,
		user.UserName,
		user.DisplayName,
		user.PasswordHash,
		user.IsAdmin,
		user.CreatedAt.Unix(),
		user.UpdatedAt.Unix(),
	)
	if err != nil {
		if s.isUniqueViolation(err) {
			return storage.ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(s.db.QueryRowContext(ctx, s.q(query), id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetUserByUserName retrieves a user by their unique username.
func (s *Store) GetUserByUserName(ctx context.Context, userName string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_name = ?`

	user, err := scanUser(s.db.QueryRowContext(ctx, s.q(query), userName))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// SetAdmin sets the global admin flag for a user.
func (s *Store) SetAdmin(ctx context.Context, userName string, isAdmin bool) error {
	res, err := s.db.ExecContext(ctx,
		s.q("UPDATE users SET is_admin = ?, updated_at = ? WHERE user_name = ?"),
		isAdmin, time.Now().Unix(), userName,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var createdAt, updatedAt int64
	err := row.Scan(
		&user.ID,
		&user.UserName,
		&user.DisplayName,
		&user.PasswordHash,
		&user.IsAdmin,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	user.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return user, nil
}
