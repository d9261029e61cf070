// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "hcms:session:"), mr
}

func TestRedisStore_CommitFindDelete(t *testing.T) {
	store, mr := newRedisStore(t)

	require.NoError(t, store.Commit("tok", []byte("data"), time.Now().Add(time.Hour)))
	assert.True(t, mr.Exists("hcms:session:tok"))
	assert.InDelta(t, time.Hour.Seconds(), mr.TTL("hcms:session:tok").Seconds(), 5)

	b, found, err := store.Find("tok")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("data"), b)

	require.NoError(t, store.Delete("tok"))
	_, found, err = store.Find("tok")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_FindMissing(t *testing.T) {
	store, _ := newRedisStore(t)

	b, found, err := store.Find("nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, b)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := newRedisStore(t)

	require.NoError(t, store.Commit("tok", []byte("data"), time.Now().Add(time.Minute)))
	mr.FastForward(2 * time.Minute)

	_, found, err := store.Find("tok")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_CommitPastExpiryDeletes(t *testing.T) {
	store, mr := newRedisStore(t)

	require.NoError(t, store.Commit("tok", []byte("data"), time.Now().Add(time.Hour)))
	require.NoError(t, store.Commit("tok", []byte("data"), time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists("hcms:session:tok"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	_, _, err := store.Find("tok")
	assert.Error(t, err)
}

func TestRedisStore_WithSessionManager(t *testing.T) {
	store, mr := newRedisStore(t)
	sm := New(store, Options{Lifetime: time.Hour})

	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), "user_id", int64(42))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, mr.Exists("hcms:session:"+cookies[0].Value))
}
