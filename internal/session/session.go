// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the cookie session manager and picks its
// backing store.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/redis/go-redis/v9"
)

// CookieName is the name of the session cookie.
const CookieName = "session_id"

// Options configures New.
type Options struct {
	Lifetime time.Duration
	// Secure marks the cookie HTTPS-only.
	Secure bool
}

// New creates a session manager backed by store.
func New(store scs.Store, opts Options) *scs.SessionManager {
	sm := scs.New()
	sm.Store = store

	sm.Lifetime = opts.Lifetime
	if sm.Lifetime <= 0 {
		sm.Lifetime = 24 * time.Hour
	}
	sm.Cookie.Name = CookieName
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = opts.Secure

	return sm
}

// SelectStore returns the store sessions are kept in: Redis when a client
// is given, the sessions table when the database is SQLite, and process
// memory otherwise.
func SelectStore(db *sql.DB, driver string, rdb redis.UniversalClient, redisPrefix string) scs.Store {
	switch {
	case rdb != nil:
		return NewRedisStore(rdb, redisPrefix)
	case driver == "sqlite" && db != nil:
		return sqlite3store.New(db)
	default:
		return memstore.New()
	}
}
