// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store owns the database connection, migrations, the per-dialect
// metadata lookups used for content type introspection, and the user
// repository.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql
	_ "modernc.org/sqlite"             // SQLite driver for database/sql
)

//go:embed migrations
var migrations embed.FS

// DBConfig holds database configuration options.
type DBConfig struct {
	// Driver is one of DriverMySQL, DriverPostgres or DriverSQLite.
	Driver string
	// DSN is the data source name; a file path for SQLite.
	DSN string
	// MaxOpenConns is the maximum number of open connections to the database.
	MaxOpenConns int
	// MaxIdleConns is the maximum number of connections in the idle connection pool.
	MaxIdleConns int
	// ConnMaxLifetime is the maximum amount of time a connection may be reused.
	ConnMaxLifetime time.Duration
	// ConnMaxIdleTime is the maximum amount of time a connection may be idle.
	ConnMaxIdleTime time.Duration
}

// DefaultDBConfig returns sensible pool defaults for the given driver and DSN.
func DefaultDBConfig(driver, dsn string) DBConfig {
	return DBConfig{
		Driver:          driver,
		DSN:             dsn,
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// NewDB opens a SQLite database at path with default pool settings.
func NewDB(path string) (*sql.DB, error) {
	db, _, err := Open(DefaultDBConfig(DriverSQLite, path))
	return db, err
}

// Open opens and verifies a database connection and returns it together
// with the matching dialect.
func Open(cfg DBConfig) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, nil, err
	}

	dsn := cfg.DSN
	switch dialect.Name() {
	case DriverMySQL:
		if dsn, err = mysqlDSN(dsn); err != nil {
			return nil, nil, err
		}
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if dialect.Name() == DriverSQLite {
		if err := applySQLitePragmas(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, dialect, nil
}

func applySQLitePragmas(db *sql.DB) error {
	// Configure SQLite for better performance and concurrency
	pragmas := []string{
		"PRAGMA journal_mode=WAL",   // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous=NORMAL", // Good balance of safety and speed
		"PRAGMA temp_store=MEMORY",  // Store temp tables in memory
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}
	return nil
}

// Migrate runs all pending migrations for the dialect.
func Migrate(db *sql.DB, dialect Dialect) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect(dialect.GooseDialect()); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.Up(db, "migrations/"+dialect.Name()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}
