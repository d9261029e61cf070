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
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation = "23505"
	pgUndefinedTable  = "42P01"
)

const pgColumnsQuery = `SELECT c.column_name, c.data_type, c.udt_name,
	c.character_maximum_length, c.numeric_precision, c.numeric_scale,
	c.is_nullable, c.column_default, c.is_identity,
	EXISTS (
		SELECT 1
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_name = tc.constraint_name
			AND kcu.table_schema = tc.table_schema
			AND kcu.table_name = tc.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = c.table_schema
			AND tc.table_name = c.table_name
			AND kcu.column_name = c.column_name
	) AS is_primary
FROM information_schema.columns c
WHERE c.table_schema = current_schema() AND c.table_name = $1
ORDER BY c.ordinal_position`

const pgEnumLabelsQuery = `SELECT e.enumlabel
FROM pg_type t
JOIN pg_enum e ON e.enumtypid = t.oid
WHERE t.typname = $1
ORDER BY e.enumsortorder`

type postgresDialect struct{}

func (postgresDialect) Name() string { return DriverPostgres }
func (postgresDialect) DriverName() string { return "pgx" }
func (postgresDialect) GooseDialect() string { return "postgres" }
func (postgresDialect) Flavor() sqlbuilder.Flavor { return sqlbuilder.PostgreSQL }
func (postgresDialect) SupportsReturning() bool { return true }
func (postgresDialect) Quote(ident string) string { return quoteWith(`"`, ident) }

// Columns reads information_schema for a table in the current schema.
// A table that does not exist has no rows there.
func (postgresDialect) Columns(ctx context.Context, q Querier, table string) ([]Column, error) {
	rows, err := q.QueryContext(ctx, pgColumnsQuery, table)
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var (
		columns  []Column
		enumUDTs = map[int]string{}
	)
	for rows.Next() {
		var (
			name, dataType, udtName, nullable string
			charLen, precision, scale         sql.NullInt64
			def, identity                     sql.NullString
			primary                           bool
		)
		if err := rows.Scan(&name, &dataType, &udtName, &charLen, &precision, &scale,
			&nullable, &def, &identity, &primary); err != nil {
			return nil, fmt.Errorf("scanning column of %s: %w", table, err)
		}

		autoInc := strings.EqualFold(identity.String, "YES") || strings.HasPrefix(def.String, "nextval(")
		col := Column{
			Name:          name,
			Type:          pgDeclaredType(dataType, udtName, charLen, precision, scale),
			Nullable:      strings.EqualFold(nullable, "YES"),
			HasDefault:    def.Valid,
			PrimaryKey:    primary,
			AutoIncrement: autoInc,
		}
		if dataType == "USER-DEFINED" {
			enumUDTs[len(columns)] = udtName
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}

	for i, udt := range enumUDTs {
		labels, err := pgEnumLabels(ctx, q, udt)
		if err != nil {
			return nil, err
		}
		if len(labels) > 0 {
			columns[i].Type = "enum"
			columns[i].EnumValues = labels
		}
	}
	return columns, nil
}

func pgEnumLabels(ctx context.Context, q Querier, udt string) ([]string, error) {
	rows, err := q.QueryContext(ctx, pgEnumLabelsQuery, udt)
	if err != nil {
		return nil, fmt.Errorf("reading labels of enum %s: %w", udt, err)
	}
	defer func() { _ = rows.Close() }()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("scanning label of enum %s: %w", udt, err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// pgDeclaredType rebuilds a declared type string comparable to what MySQL
// and SQLite report, e.g. "varchar(255)" or "numeric(10,2)".
func pgDeclaredType(dataType, udtName string, charLen, precision, scale sql.NullInt64) string {
	switch dataType {
	case "character varying", "character":
		if charLen.Valid {
			return fmt.Sprintf("varchar(%d)", charLen.Int64)
		}
		return "varchar"
	case "numeric":
		if precision.Valid && scale.Valid {
			return fmt.Sprintf("numeric(%d,%d)", precision.Int64, scale.Int64)
		}
		return "numeric"
	case "smallint", "integer", "bigint":
		// int2, int4 or int8: "integer" alone would read as 64 bit.
		return strings.ToLower(udtName)
	case "USER-DEFINED":
		return strings.ToLower(udtName)
	default:
		return strings.ToLower(dataType)
	}
}

// duplicateKey reads the column from "Key (username)=(Bob) already exists.".
func (postgresDialect) duplicateKey(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return "", false
	}
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName, true
	}
	detail := pgErr.Detail
	if i := strings.Index(detail, "Key ("); i >= 0 {
		rest := detail[i+len("Key ("):]
		if j := strings.Index(rest, ")="); j >= 0 && !strings.Contains(rest[:j], ",") {
			return rest[:j], true
		}
	}
	return "", true
}

func (postgresDialect) missingTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
