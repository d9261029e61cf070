// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrTableNotFound is returned when a table does not exist.
var ErrTableNotFound = errors.New("table not found")

// DuplicateKeyError reports a unique-constraint violation.
// Column is empty when the driver error does not name it.
type DuplicateKeyError struct {
	Column string
	Err    error
}

func (e *DuplicateKeyError) Error() string {
	if e.Column == "" {
		return "duplicate key: " + e.Err.Error()
	}
	return fmt.Sprintf("duplicate key on %s: %v", e.Column, e.Err)
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// Querier is the subset of *sql.DB used for metadata lookups.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Column is the raw storage metadata of one table column.
type Column struct {
	Name          string
	Type          string // declared type as reported by the database
	Nullable      bool
	HasDefault    bool
	PrimaryKey    bool
	AutoIncrement bool
	EnumValues    []string // labels of a named enum type, when the dialect reports them separately
}

// Dialect hides the differences between the supported databases.
type Dialect interface {
	// Name is one of the Driver* constants.
	Name() string
	// DriverName is the database/sql driver name.
	DriverName() string
	// GooseDialect is the dialect name used by goose.
	GooseDialect() string
	// Flavor is the statement flavor used by the query builder.
	Flavor() sqlbuilder.Flavor
	// Quote quotes an identifier.
	Quote(ident string) string
	// Columns returns the column metadata of table in declaration order.
	// It returns ErrTableNotFound if the table does not exist.
	Columns(ctx context.Context, q Querier, table string) ([]Column, error)
	// SupportsReturning reports whether INSERT ... RETURNING is available.
	SupportsReturning() bool

	duplicateKey(err error) (column string, ok bool)
	missingTable(err error) bool
}

// DialectFor returns the dialect for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case DriverMySQL:
		return mysqlDialect{}, nil
	case DriverPostgres, "postgresql", "pgx":
		return postgresDialect{}, nil
	case DriverSQLite, "sqlite3":
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// ClassifyError translates driver errors into DuplicateKeyError or
// ErrTableNotFound. Other errors are returned unchanged.
func ClassifyError(d Dialect, err error) error {
	if err == nil {
		return nil
	}
	if column, ok := d.duplicateKey(err); ok {
		return &DuplicateKeyError{Column: column, Err: err}
	}
	if d.missingTable(err) {
		return fmt.Errorf("%w: %v", ErrTableNotFound, err)
	}
	return err
}

// quoteWith doubles any embedded quote character and wraps ident in it.
func quoteWith(q, ident string) string {
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

// stripTable removes a "table." prefix from a qualified column or key name.
func stripTable(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
