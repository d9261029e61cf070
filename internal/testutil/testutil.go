// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the headless CMS.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/olegiv/ocms-headless/internal/auth"
	"github.com/olegiv/ocms-headless/internal/model"
	"github.com/olegiv/ocms-headless/internal/store"
)

// HashParams keeps argon2 cheap in tests.
var HashParams = auth.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a test logger that only outputs errors.
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB opens a migrated SQLite database in a temporary directory. It is
// closed when the test ends.
func TestDB(t *testing.T) (*sql.DB, store.Dialect) {
	t.Helper()

	db, dialect, err := store.Open(store.DefaultDBConfig(store.DriverSQLite, filepath.Join(t.TempDir(), "hcms-test.db")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db, dialect); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db, dialect
}

// Exec runs DDL or fixture statements against db.
func Exec(t *testing.T, db *sql.DB, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}

// CreateUser stores a user with the given password and returns it with
// its id set.
func CreateUser(t *testing.T, users *store.UserStore, username, password, role string, p model.Privileges) model.User {
	t.Helper()

	hash, err := HashParams.Hash(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	u := model.User{Username: username, Password: hash, Role: role, Privileges: p}
	id, err := users.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("creating user %s: %v", username, err)
	}
	u.ID = id
	return u
}
