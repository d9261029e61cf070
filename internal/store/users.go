// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/olegiv/ocms-headless/internal/model"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

const userColumns = "id, username, password, role, privileges"

// UserStore persists users.
type UserStore struct {
	db      *sqlx.DB
	dialect Dialect
}

// NewUserStore creates a UserStore over db.
func NewUserStore(db *sql.DB, dialect Dialect) *UserStore {
	return &UserStore{
		db:      sqlx.NewDb(db, dialect.DriverName()),
		dialect: dialect,
	}
}

// Create inserts u and returns its new id. A taken username yields a
// *DuplicateKeyError.
func (s *UserStore) Create(ctx context.Context, u model.User) (int64, error) {
	query := s.db.Rebind(`INSERT INTO users (username, password, role, privileges) VALUES (?, ?, ?, ?)`)
	args := []any{u.Username, u.Password, u.Role, u.Privileges}

	if s.dialect.SupportsReturning() {
		var id int64
		if err := s.db.QueryRowxContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("creating user: %w", ClassifyError(s.dialect, err))
		}
		return id, nil
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("creating user: %w", ClassifyError(s.dialect, err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading new user id: %w", err)
	}
	return id, nil
}

// GetByID returns the user with the given id.
func (s *UserStore) GetByID(ctx context.Context, id int64) (model.User, error) {
	return s.get(ctx, "id = ?", id)
}

// GetByUsername returns the user with the given username. The match is
// case-sensitive.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return s.get(ctx, "username = ?", username)
}

func (s *UserStore) get(ctx context.Context, where string, arg any) (model.User, error) {
	var u model.User
	query := s.db.Rebind("SELECT " + userColumns + " FROM users WHERE " + where)
	if err := s.db.GetContext(ctx, &u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// List returns all users ordered by id.
func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := s.db.SelectContext(ctx, &users, "SELECT "+userColumns+" FROM users ORDER BY id"); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Count returns the number of users.
func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

// CountByRole returns the number of users with the given role.
func (s *UserStore) CountByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, s.db.Rebind("SELECT COUNT(*) FROM users WHERE role = ?"), role); err != nil {
		return 0, fmt.Errorf("counting %s users: %w", role, err)
	}
	return n, nil
}

// Update overwrites the username, role and privileges of u.ID. The password
// is replaced only when u.Password is not empty.
func (s *UserStore) Update(ctx context.Context, u model.User) error {
	query := `UPDATE users SET username = ?, role = ?, privileges = ?, updated_at = CURRENT_TIMESTAMP`
	args := []any{u.Username, u.Role, u.Privileges}
	if u.Password != "" {
		query += `, password = ?`
		args = append(args, u.Password)
	}
	query += ` WHERE id = ?`
	args = append(args, u.ID)

	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("updating user: %w", ClassifyError(s.dialect, err))
	}
	return requireAffected(res)
}

// Delete removes the user with the given id.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM users WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
