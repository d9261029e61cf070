// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"github.com/samber/lo"

	"github.com/olegiv/ocms-headless/internal/schema"
	"github.com/olegiv/ocms-headless/internal/store"
)

// Builder assembles parameterized statements for one content type. Table
// and column names come from the introspected descriptor and are quoted;
// every value is bound as an argument.
type Builder struct {
	dialect store.Dialect
	ct      *schema.ContentType
}

// NewBuilder creates a Builder for ct.
func NewBuilder(dialect store.Dialect, ct *schema.ContentType) Builder {
	return Builder{dialect: dialect, ct: ct}
}

func (b Builder) q(ident string) string {
	return b.dialect.Quote(ident)
}

func (b Builder) table() string {
	return b.q(b.ct.Table)
}

// Insert builds an INSERT of rec with owner bound to the owner column. The
// owner column is never taken from rec. When the dialect supports it the
// statement returns the new primary key.
func (b Builder) Insert(rec Record, owner int64) (string, []any) {
	ib := b.dialect.Flavor().NewInsertBuilder()
	ib.InsertInto(b.table())

	cols := make([]string, 0, rec.Len()+1)
	vals := make([]any, 0, rec.Len()+1)
	for i, c := range rec.Columns {
		if c == b.ct.Owner {
			continue
		}
		cols = append(cols, b.q(c))
		vals = append(vals, rec.Values[i])
	}
	cols = append(cols, b.q(b.ct.Owner))
	vals = append(vals, owner)
	ib.Cols(cols...).Values(vals...)

	query, args := ib.Build()
	if b.dialect.SupportsReturning() {
		query += " RETURNING " + b.q(b.ct.PrimaryKey)
	}
	return query, args
}

// Update builds an UPDATE of the record with the given key. The
// updated_at column, when present, is refreshed. ok is false when there is
// nothing to set.
func (b Builder) Update(rec Record, key any) (query string, args []any, ok bool) {
	ub := b.dialect.Flavor().NewUpdateBuilder()
	ub.Update(b.table())

	assignments := make([]string, 0, rec.Len()+1)
	for i, c := range rec.Columns {
		if c == b.ct.Owner {
			continue
		}
		assignments = append(assignments, ub.Assign(b.q(c), rec.Values[i]))
	}
	if _, has := b.ct.Field(schema.UpdatedAtColumn); has {
		assignments = append(assignments, b.q(schema.UpdatedAtColumn)+" = CURRENT_TIMESTAMP")
	}
	if len(assignments) == 0 {
		return "", nil, false
	}

	ub.Set(assignments...).Where(ub.Equal(b.q(b.ct.PrimaryKey), key))
	query, args = ub.Build()
	return query, args, true
}

// Delete builds a DELETE of the record with the given key.
func (b Builder) Delete(key any) (string, []any) {
	db := b.dialect.Flavor().NewDeleteBuilder()
	db.DeleteFrom(b.table()).Where(db.Equal(b.q(b.ct.PrimaryKey), key))
	return db.Build()
}

// SelectByID builds a SELECT of every column of one record.
func (b Builder) SelectByID(key any) (string, []any) {
	sb := b.dialect.Flavor().NewSelectBuilder()
	sb.Select(b.columns()...).From(b.table()).Where(sb.Equal(b.q(b.ct.PrimaryKey), key))
	return sb.Build()
}

// SelectAll builds a SELECT of all records ordered by primary key. A
// non-nil owner restricts it to that owner's records.
func (b Builder) SelectAll(owner *int64) (string, []any) {
	sb := b.dialect.Flavor().NewSelectBuilder()
	sb.Select(b.columns()...).From(b.table())
	if owner != nil {
		sb.Where(sb.Equal(b.q(b.ct.Owner), *owner))
	}
	sb.OrderBy(b.q(b.ct.PrimaryKey)).Asc()
	return sb.Build()
}

// OwnerOf builds a SELECT of the owner column of one record.
func (b Builder) OwnerOf(key any) (string, []any) {
	sb := b.dialect.Flavor().NewSelectBuilder()
	sb.Select(b.q(b.ct.Owner)).From(b.table()).Where(sb.Equal(b.q(b.ct.PrimaryKey), key))
	return sb.Build()
}

func (b Builder) columns() []string {
	return lo.Map(b.ct.Fields, func(f schema.Field, _ int) string { return b.q(f.Name) })
}
