package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// User is one library user.
type User struct {
	ID        int64
	Name      string
	CreatedAt string
}

// UserRepo reads and writes user rows.
type UserRepo struct {
	q Querier
}

// NewUserRepo binds a user repository to a connection or transaction.
func NewUserRepo(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// GetByName fetches a user by name, or nil when unknown.
func (r *UserRepo) GetByName(ctx context.Context, name string) (*User, error) {
	row := r.q.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM users WHERE name = ?", name)
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// GetByID fetches a user by id, or nil when unknown.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.q.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM users WHERE id = ?", id)
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// Ensure creates the named user if missing and returns the row either way.
func (r *UserRepo) Ensure(ctx context.Context, name string) (*User, error) {
	if name == "" {
		return nil, fmt.Errorf("user name is required")
	}
	if _, err := r.q.ExecContext(ctx,
		"INSERT INTO users (name) VALUES (?) ON CONFLICT (name) DO NOTHING", name); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	return r.GetByName(ctx, name)
}
