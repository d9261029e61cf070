// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content validates, authorizes and stores records of introspected
// content types.
//
// Every operation runs the same sequence and stops at the first failing
// step: the name is checked and resolved to a descriptor, the payload is
// validated, access is decided, and only then is a statement executed.
package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cast"

	"github.com/olegiv/ocms-headless/internal/access"
	"github.com/olegiv/ocms-headless/internal/model"
	"github.com/olegiv/ocms-headless/internal/schema"
	"github.com/olegiv/ocms-headless/internal/store"
)

// ErrRecordNotFound is returned when no record has the requested key.
var ErrRecordNotFound = errors.New("record not found")

// Item is one stored record keyed by column name.
type Item map[string]any

// Sanitizer cleans user supplied markup. *bluemonday.Policy satisfies it.
type Sanitizer interface {
	Sanitize(s string) string
}

// Option configures a Service.
type Option func(*Service)

// WithSanitizer cleans every text value before it is written.
func WithSanitizer(s Sanitizer) Option {
	return func(svc *Service) {
		svc.sanitizer = s
	}
}

// Service runs content operations against one database.
type Service struct {
	db        *sqlx.DB
	dialect   store.Dialect
	schemas   *schema.Introspector
	sanitizer Sanitizer
}

// NewService creates a Service.
func NewService(db *sql.DB, dialect store.Dialect, opts ...Option) *Service {
	s := &Service{
		db:      sqlx.NewDb(db, dialect.DriverName()),
		dialect: dialect,
		schemas: schema.NewIntrospector(db, dialect),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Describe resolves a content type name to its descriptor.
func (s *Service) Describe(ctx context.Context, name string) (*schema.ContentType, error) {
	return s.schemas.Introspect(ctx, name)
}

// Create validates payload and inserts it owned by u. It returns the stored
// record.
func (s *Service) Create(ctx context.Context, u *model.User, name string, payload map[string]any) (Item, error) {
	ct, err := s.schemas.Introspect(ctx, name)
	if err != nil {
		return nil, err
	}
	rec, err := Validate(payload, ct)
	if err != nil {
		return nil, err
	}
	if err := access.Check(u, access.Request{Op: access.OpCreate}); err != nil {
		return nil, err
	}
	s.sanitize(ct, &rec)

	b := NewBuilder(s.dialect, ct)
	query, args := b.Insert(rec, u.ID)

	var key any
	if s.dialect.SupportsReturning() {
		if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&key); err != nil {
			return nil, fmt.Errorf("inserting into %s: %w", ct.Table, store.ClassifyError(s.dialect, err))
		}
	} else {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("inserting into %s: %w", ct.Table, store.ClassifyError(s.dialect, err))
		}
		if key, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("reading key of new %s record: %w", ct.Name, err)
		}
	}

	return s.fetch(ctx, b, ct, normalize(key))
}

// List returns the records u may read: all of them with "read any", only
// u's own with "read own".
func (s *Service) List(ctx context.Context, u *model.User, name string) ([]Item, error) {
	ct, err := s.schemas.Introspect(ctx, name)
	if err != nil {
		return nil, err
	}
	scope, err := access.ListScope(u)
	if err != nil {
		return nil, err
	}

	var owner *int64
	if scope == access.ScopeOwn {
		owner = &u.ID
	}
	query, args := NewBuilder(s.dialect, ct).SelectAll(owner)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", ct.Table, store.ClassifyError(s.dialect, err))
	}
	defer func() { _ = rows.Close() }()

	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows, ct)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", ct.Table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", ct.Table, err)
	}
	return items, nil
}

// Get returns one record when u may read it.
func (s *Service) Get(ctx context.Context, u *model.User, name, rawKey string) (Item, error) {
	ct, key, err := s.resolve(ctx, name, rawKey)
	if err != nil {
		return nil, err
	}
	b := NewBuilder(s.dialect, ct)
	if err := s.authorize(ctx, b, u, access.OpRead, key); err != nil {
		return nil, err
	}
	return s.fetch(ctx, b, ct, key)
}

// Update validates payload and writes it over the record when u may update
// it. Optional fields absent from payload keep their stored values.
func (s *Service) Update(ctx context.Context, u *model.User, name, rawKey string, payload map[string]any) (Item, error) {
	ct, key, err := s.resolve(ctx, name, rawKey)
	if err != nil {
		return nil, err
	}
	rec, err := Validate(payload, ct)
	if err != nil {
		return nil, err
	}
	b := NewBuilder(s.dialect, ct)
	if err := s.authorize(ctx, b, u, access.OpUpdate, key); err != nil {
		return nil, err
	}
	s.sanitize(ct, &rec)

	if query, args, ok := b.Update(rec, key); ok {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("updating %s: %w", ct.Table, store.ClassifyError(s.dialect, err))
		}
		if err := requireAffected(res); err != nil {
			return nil, err
		}
	}
	return s.fetch(ctx, b, ct, key)
}

// Delete removes the record when u may delete it.
func (s *Service) Delete(ctx context.Context, u *model.User, name, rawKey string) error {
	ct, key, err := s.resolve(ctx, name, rawKey)
	if err != nil {
		return err
	}
	b := NewBuilder(s.dialect, ct)
	if err := s.authorize(ctx, b, u, access.OpDelete, key); err != nil {
		return err
	}

	query, args := b.Delete(key)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", ct.Table, store.ClassifyError(s.dialect, err))
	}
	return requireAffected(res)
}

func (s *Service) resolve(ctx context.Context, name, rawKey string) (*schema.ContentType, any, error) {
	ct, err := s.schemas.Introspect(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	key, ok := ConvertKey(ct, rawKey)
	if !ok {
		return nil, nil, ErrRecordNotFound
	}
	return ct, key, nil
}

// authorize reads the owner of the record and runs the access gate.
func (s *Service) authorize(ctx context.Context, b Builder, u *model.User, op access.Operation, key any) error {
	if u == nil {
		return access.ErrUnauthenticated
	}

	query, args := b.OwnerOf(key)
	var owner sql.NullInt64
	if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("reading owner: %w", store.ClassifyError(s.dialect, err))
	}

	req := access.Request{Op: op}
	if owner.Valid {
		req.Owner = &owner.Int64
	}
	return access.Check(u, req)
}

func (s *Service) fetch(ctx context.Context, b Builder, ct *schema.ContentType, key any) (Item, error) {
	query, args := b.SelectByID(key)
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ct.Table, store.ClassifyError(s.dialect, err))
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", ct.Table, err)
		}
		return nil, ErrRecordNotFound
	}
	item, err := scanItem(rows, ct)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", ct.Table, err)
	}
	return item, nil
}

func (s *Service) sanitize(ct *schema.ContentType, rec *Record) {
	if s.sanitizer == nil {
		return
	}
	for i, c := range rec.Columns {
		f, _ := ct.Field(c)
		if text, ok := rec.Values[i].(string); ok && f.Type.Kind == schema.KindText {
			rec.Values[i] = s.sanitizer.Sanitize(text)
		}
	}
}

func scanItem(rows *sqlx.Rows, ct *schema.ContentType) (Item, error) {
	raw := map[string]any{}
	if err := rows.MapScan(raw); err != nil {
		return nil, err
	}
	item := make(Item, len(raw))
	for col, v := range raw {
		v = normalize(v)
		if f, ok := ct.Field(col); ok && v != nil {
			switch f.Type.Kind {
			case schema.KindBoolean:
				if b, err := cast.ToBoolE(v); err == nil {
					v = b
				}
			case schema.KindInteger:
				if n, err := cast.ToInt64E(v); err == nil {
					v = n
				}
			}
		}
		item[col] = v
	}
	return item, nil
}

// normalize turns driver byte slices into strings.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}
