// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// Create sessions table required by sqlite3store
	_, err = db.Exec(`
		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX sessions_expiry_idx ON sessions(expiry);
	`)
	if err != nil {
		t.Fatalf("failed to create sessions table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_DevMode(t *testing.T) {
	sm := New(memstore.New(), Options{})

	if sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = false in dev mode")
	}
	if sm.Cookie.Name != CookieName {
		t.Errorf("Cookie.Name = %q, want %q", sm.Cookie.Name, CookieName)
	}
	if sm.Lifetime != 24*time.Hour {
		t.Errorf("Lifetime = %v, want 24h default", sm.Lifetime)
	}
}

func TestNew_ProductionMode(t *testing.T) {
	sm := New(memstore.New(), Options{Lifetime: 2 * time.Hour, Secure: true})

	if !sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = true in production mode")
	}
	if sm.Cookie.Path != "/" {
		t.Errorf("expected Cookie.Path = '/', got %q", sm.Cookie.Path)
	}
	if sm.Lifetime != 2*time.Hour {
		t.Errorf("Lifetime = %v, want 2h", sm.Lifetime)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("expected Cookie.HttpOnly = true")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite = Lax, got %v", sm.Cookie.SameSite)
	}
}

func TestSelectStore(t *testing.T) {
	db := setupTestDB(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	if _, ok := SelectStore(db, "sqlite", rdb, "p:").(*RedisStore); !ok {
		t.Error("Redis client given: expected *RedisStore")
	}

	sqliteStore := SelectStore(db, "sqlite", nil, "")
	if _, ok := sqliteStore.(*sqlite3store.SQLite3Store); !ok {
		t.Errorf("sqlite driver: got %T, want *sqlite3store.SQLite3Store", sqliteStore)
	}
	sqliteStore.(*sqlite3store.SQLite3Store).StopCleanup()

	if _, ok := SelectStore(db, "postgres", nil, "").(*memstore.MemStore); !ok {
		t.Error("postgres without Redis: expected *memstore.MemStore")
	}
}
