// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package schema derives content type descriptors from live table metadata.
//
// A content type named "post" is stored in the table "posts". Its shape is
// read from the database on every lookup, so the descriptor always reflects
// the current table definition.
package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/olegiv/ocms-headless/internal/store"
)

// ErrContentTypeNotFound is returned when no usable table backs a content
// type name.
var ErrContentTypeNotFound = errors.New("content type does not exist")

// Storage naming conventions.
const (
	TableSuffix     = "s"
	OwnerColumn     = "user_id"
	CreatedAtColumn = "created_at"
	UpdatedAtColumn = "updated_at"
)

// reserved names map onto internal tables and never resolve.
var reserved = []string{"user", "session"}

// Field is one column of a content type.
type Field struct {
	Name          string
	Type          FieldType
	DeclaredType  string
	Nullable      bool
	HasDefault    bool
	PrimaryKey    bool
	AutoIncrement bool
	// System fields are populated by the server and rejected in payloads.
	System bool
}

// Required reports whether a payload must supply the field.
func (f Field) Required() bool {
	return !f.System && !f.Nullable && !f.HasDefault
}

// ContentType describes the table behind a content type name.
type ContentType struct {
	Name       string
	Table      string
	Fields     []Field
	PrimaryKey string
	Owner      string
}

// Field returns the field with the given name.
func (ct *ContentType) Field(name string) (Field, bool) {
	return lo.Find(ct.Fields, func(f Field) bool { return f.Name == name })
}

// Editable returns the fields a payload may carry, in declaration order.
func (ct *ContentType) Editable() []Field {
	return lo.Filter(ct.Fields, func(f Field, _ int) bool { return !f.System })
}

// TableName returns the table backing the content type name.
func TableName(name string) string {
	return name + TableSuffix
}

// Introspector builds ContentType descriptors from database metadata.
type Introspector struct {
	db      store.Querier
	dialect store.Dialect
}

// NewIntrospector creates an Introspector.
func NewIntrospector(db store.Querier, dialect store.Dialect) *Introspector {
	return &Introspector{db: db, dialect: dialect}
}

// Introspect returns the descriptor of the named content type. It returns
// ErrInvalidIdentifier before touching the database when name is unsafe, and
// ErrContentTypeNotFound when the table is missing, reserved, lacks an owner
// column or has no single-column primary key. Other database errors are
// returned wrapped.
func (in *Introspector) Introspect(ctx context.Context, name string) (*ContentType, error) {
	if err := ValidateIdentifier(name); err != nil {
		return nil, err
	}
	if lo.ContainsBy(reserved, func(r string) bool { return strings.EqualFold(r, name) }) {
		return nil, ErrContentTypeNotFound
	}

	table := TableName(name)
	columns, err := in.dialect.Columns(ctx, in.db, table)
	if err != nil {
		if errors.Is(err, store.ErrTableNotFound) {
			return nil, ErrContentTypeNotFound
		}
		return nil, fmt.Errorf("introspecting %s: %w", table, err)
	}

	return Describe(name, columns)
}

// Describe builds a descriptor from raw column metadata.
func Describe(name string, columns []store.Column) (*ContentType, error) {
	ct := &ContentType{
		Name:   name,
		Table:  TableName(name),
		Fields: make([]Field, 0, len(columns)),
	}

	var primaryKeys int
	for _, c := range columns {
		f := Field{
			Name:          c.Name,
			Type:          ParseType(c.Type, c.EnumValues),
			DeclaredType:  c.Type,
			Nullable:      c.Nullable,
			HasDefault:    c.HasDefault,
			PrimaryKey:    c.PrimaryKey,
			AutoIncrement: c.AutoIncrement,
		}
		f.System = isSystem(f)
		if f.PrimaryKey {
			primaryKeys++
			ct.PrimaryKey = f.Name
		}
		if f.Name == OwnerColumn {
			ct.Owner = f.Name
		}
		ct.Fields = append(ct.Fields, f)
	}

	if ct.Owner == "" || primaryKeys != 1 {
		return nil, ErrContentTypeNotFound
	}
	return ct, nil
}

func isSystem(f Field) bool {
	if f.PrimaryKey || f.AutoIncrement {
		return true
	}
	switch f.Name {
	case OwnerColumn, CreatedAtColumn, UpdatedAtColumn:
		return true
	}
	return false
}
