// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/huandu/go-sqlbuilder"
)

// MySQL server error numbers.
const (
	mysqlErrDupEntry    = 1062
	mysqlErrNoSuchTable = 1146
)

const mysqlDupKeyMarker = "for key '"

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return DriverMySQL }
func (mysqlDialect) DriverName() string { return "mysql" }
func (mysqlDialect) GooseDialect() string { return "mysql" }
func (mysqlDialect) Flavor() sqlbuilder.Flavor { return sqlbuilder.MySQL }
func (mysqlDialect) SupportsReturning() bool { return false }
func (mysqlDialect) Quote(ident string) string { return quoteWith("`", ident) }

// Columns runs SHOW COLUMNS against the current database.
func (d mysqlDialect) Columns(ctx context.Context, q Querier, table string) ([]Column, error) {
	rows, err := q.QueryContext(ctx, "SHOW COLUMNS FROM "+d.Quote(table))
	if err != nil {
		if d.missingTable(err) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
		}
		return nil, fmt.Errorf("showing columns of %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var (
			field, typ, null, key, extra string
			def                          sql.NullString
		)
		if err := rows.Scan(&field, &typ, &null, &key, &def, &extra); err != nil {
			return nil, fmt.Errorf("scanning column of %s: %w", table, err)
		}
		extra = strings.ToLower(extra)
		columns = append(columns, Column{
			Name:          field,
			Type:          strings.TrimSpace(typ),
			Nullable:      strings.EqualFold(null, "YES"),
			HasDefault:    def.Valid || strings.Contains(extra, "default_generated"),
			PrimaryKey:    strings.EqualFold(key, "PRI"),
			AutoIncrement: strings.Contains(extra, "auto_increment"),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	return columns, nil
}

// duplicateKey recognizes "Duplicate entry 'x' for key 'users.username'".
func (mysqlDialect) duplicateKey(err error) (string, bool) {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) || myErr.Number != mysqlErrDupEntry {
		return "", false
	}
	msg := myErr.Message
	i := strings.LastIndex(msg, mysqlDupKeyMarker)
	if i < 0 {
		return "", true
	}
	rest := msg[i+len(mysqlDupKeyMarker):]
	if j := strings.IndexByte(rest, '\''); j >= 0 {
		rest = rest[:j]
	}
	return stripTable(rest), true
}

func (mysqlDialect) missingTable(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlErrNoSuchTable
}

// mysqlDSN forces the connection options the repositories rely on.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	// Report matched rows, not changed rows, so an update that rewrites
	// identical values is not mistaken for a missing record.
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}
