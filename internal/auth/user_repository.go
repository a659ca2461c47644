package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ListByRole(ctx context.Context, role Role) ([]User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool) error
	UpdateRole(ctx context.Context, id string, role Role) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

const userColumns = "id, username, password_hash, role, must_change_password, created_at, updated_at"

// SQLiteUserRepository implements UserRepository using SQLite.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed user repository.
func NewUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Create inserts a new account. The ID is generated if empty.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = "usr-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	user.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	user.UpdatedAt = user.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, must_change_password, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash, string(user.Role),
		boolToInt(user.MustChangePassword), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its unique ID.
func (r *SQLiteUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetByUsername retrieves an account by username (case-sensitive).
func (r *SQLiteUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
}

// ListByRole returns all accounts holding the given role, oldest first.
func (r *SQLiteUserRepository) ListByRole(ctx context.Context, role Role) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role = ? ORDER BY created_at ASC, id ASC",
		string(role),
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUserFrom(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	if users == nil {
		users = []User{}
	}
	return users, nil
}

// UpdatePassword replaces an account's digest and sets the
// forced-change flag in the same statement, so the lifecycle state and
// the credential can never drift apart.
func (r *SQLiteUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, must_change_password = ?, updated_at = ? WHERE id = ?`,
		passwordHash, boolToInt(mustChange), now, id,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateRole changes an account's role.
func (r *SQLiteUserRepository) UpdateRole(ctx context.Context, id string, role Role) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		string(role), now, id,
	)
	if err != nil {
		return fmt.Errorf("updating role: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes an account by ID. The owned character row is removed
// by the ON DELETE CASCADE foreign key, never orphaned.
func (r *SQLiteUserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Count returns the total number of accounts.
func (r *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// getUser executes a query and scans a single user result.
func (r *SQLiteUserRepository) getUser(ctx context.Context, query string, args ...any) (*User, error) {
	return scanUserFrom(r.db.QueryRowContext(ctx, query, args...))
}

// scanner is an interface over sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanUserFrom scans a user from any scanner (Row or Rows).
func scanUserFrom(s scanner) (*User, error) {
	var u User
	var role string
	var mustChange int
	var createdAt, updatedAt string

	err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &role,
		&mustChange, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.Role = Role(role)
	u.MustChangePassword = mustChange != 0
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	u.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &u, nil
}

// Helper functions.

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "unique constraint"))
}
