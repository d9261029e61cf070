// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

// Both SQLite drivers in use (modernc and mattn) report constraint failures
// with the same message text, so errors are matched on it.
const (
	sqliteUniqueFailed = "UNIQUE constraint failed: "
	sqliteNoSuchTable  = "no such table"
)

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return DriverSQLite }
func (sqliteDialect) DriverName() string { return "sqlite" }
func (sqliteDialect) GooseDialect() string { return "sqlite3" }
func (sqliteDialect) Flavor() sqlbuilder.Flavor { return sqlbuilder.SQLite }
func (sqliteDialect) SupportsReturning() bool { return true }
func (sqliteDialect) Quote(ident string) string { return quoteWith(`"`, ident) }

// Columns runs PRAGMA table_info, which returns no rows for a missing table.
func (d sqliteDialect) Columns(ctx context.Context, q Querier, table string) ([]Column, error) {
	rows, err := q.QueryContext(ctx, "PRAGMA table_info("+d.Quote(table)+")")
	if err != nil {
		return nil, fmt.Errorf("reading table info of %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var (
			cid, notNull, pk int64
			name, typ        string
			def              sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &def, &pk); err != nil {
			return nil, fmt.Errorf("scanning column of %s: %w", table, err)
		}
		typ = strings.ToLower(strings.TrimSpace(typ))
		// An INTEGER PRIMARY KEY column aliases the rowid.
		rowid := pk > 0 && typ == "integer"
		columns = append(columns, Column{
			Name:          name,
			Type:          typ,
			Nullable:      notNull == 0 && pk == 0,
			HasDefault:    def.Valid,
			PrimaryKey:    pk > 0,
			AutoIncrement: rowid,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading table info of %s: %w", table, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	return columns, nil
}

// duplicateKey reads the column from "UNIQUE constraint failed: posts.slug".
func (sqliteDialect) duplicateKey(err error) (string, bool) {
	msg := err.Error()
	i := strings.Index(msg, sqliteUniqueFailed)
	if i < 0 {
		return "", false
	}
	rest := msg[i+len(sqliteUniqueFailed):]
	if j := strings.IndexAny(rest, " ,"); j >= 0 {
		if rest[j] == ',' {
			// Composite key: no single column to blame.
			return "", true
		}
		rest = rest[:j]
	}
	return stripTable(rest), true
}

func (sqliteDialect) missingTable(err error) bool {
	return strings.Contains(err.Error(), sqliteNoSuchTable)
}

// sqliteDSN adds the per-connection pragmas every pooled connection needs.
// The _pragma parameter is understood by modernc.org/sqlite.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}
