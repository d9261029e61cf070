package content

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-headless/internal/access"
	"github.com/olegiv/ocms-headless/internal/model"
	"github.com/olegiv/ocms-headless/internal/schema"
	"github.com/olegiv/ocms-headless/internal/store"
)

const notesTable = `CREATE TABLE notes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	body VARCHAR(200) NOT NULL,
	pinned BOOLEAN NOT NULL DEFAULT 0,
	due DATE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	user_id INTEGER NOT NULL
)`

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()

	db, dialect, err := store.Open(store.DefaultDBConfig(store.DriverSQLite, filepath.Join(t.TempDir(), "content.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db, dialect))

	_, err = db.Exec(notesTable)
	require.NoError(t, err)

	return NewService(db, dialect, opts...)
}

func user(id int64, p model.Privileges) *model.User {
	return &model.User{ID: id, Username: "u", Role: model.RoleUser, Privileges: p}
}

func TestServiceLifecycle(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	owner := user(1, model.AllPrivileges())

	created, err := svc.Create(ctx, owner, "note", map[string]any{"body": "first", "pinned": "1"})
	require.NoError(t, err)
	assert.Equal(t, "first", created["body"])
	assert.Equal(t, true, created["pinned"])
	assert.Equal(t, int64(1), created["user_id"])
	id, ok := created["id"].(int64)
	require.True(t, ok, "id has type %T", created["id"])

	key := idString(id)
	got, err := svc.Get(ctx, owner, "note", key)
	require.NoError(t, err)
	assert.Equal(t, "first", got["body"])

	updated, err := svc.Update(ctx, owner, "note", key, map[string]any{"body": "second", "due": "2025-01-31"})
	require.NoError(t, err)
	assert.Equal(t, "second", updated["body"])
	assert.Equal(t, true, updated["pinned"], "absent optional field keeps its value")

	items, err := svc.List(ctx, owner, "note")
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, svc.Delete(ctx, owner, "note", key))
	_, err = svc.Get(ctx, owner, "note", key)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, owner, "note", key), ErrRecordNotFound)
}

func TestServiceOwnerCannotBeSpoofed(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, user(1, model.AllPrivileges()), "note", map[string]any{"body": "x", "user_id": 2})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "unexpected field `user_id`", verr.Message)
}

func TestServicePipelineOrder(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	nobody := user(1, model.Privileges{})

	_, err := svc.Create(ctx, nobody, "no-te", map[string]any{})
	assert.ErrorIs(t, err, schema.ErrInvalidIdentifier)

	_, err = svc.Create(ctx, nobody, "widget", map[string]any{})
	assert.ErrorIs(t, err, schema.ErrContentTypeNotFound)

	_, err = svc.Create(ctx, nobody, "note", map[string]any{})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr), "validation precedes the access gate, got %v", err)

	_, err = svc.Create(ctx, nobody, "note", map[string]any{"body": "x"})
	assert.ErrorIs(t, err, access.ErrAccessDenied)

	_, err = svc.Create(ctx, nil, "note", map[string]any{"body": "x"})
	assert.ErrorIs(t, err, access.ErrUnauthenticated)

	items, err := svc.List(ctx, user(2, model.AllPrivileges()), "note")
	require.NoError(t, err)
	assert.Empty(t, items, "denied create must not write")
}

func TestServiceOwnership(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	alice := user(1, model.Privileges{Create: true, ReadOwn: true, UpdateOwn: true, DeleteOwn: true})
	bob := user(2, model.Privileges{Create: true, ReadOwn: true, UpdateOwn: true, DeleteOwn: true})
	auditor := user(3, model.Privileges{ReadAny: true})
	editor := user(4, model.Privileges{UpdateAny: true, DeleteAny: true})

	a, err := svc.Create(ctx, alice, "note", map[string]any{"body": "alice's"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, "note", map[string]any{"body": "bob's"})
	require.NoError(t, err)
	aliceKey := idString(a["id"].(int64))

	// Own scope lists only own records.
	items, err := svc.List(ctx, alice, "note")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "alice's", items[0]["body"])

	// Any scope lists everything.
	items, err = svc.List(ctx, auditor, "note")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = svc.List(ctx, editor, "note")
	assert.ErrorIs(t, err, access.ErrAccessDenied)

	_, err = svc.Get(ctx, bob, "note", aliceKey)
	assert.ErrorIs(t, err, access.ErrAccessDenied)
	_, err = svc.Update(ctx, bob, "note", aliceKey, map[string]any{"body": "hijack"})
	assert.ErrorIs(t, err, access.ErrAccessDenied)
	assert.ErrorIs(t, svc.Delete(ctx, bob, "note", aliceKey), access.ErrAccessDenied)

	_, err = svc.Get(ctx, auditor, "note", aliceKey)
	assert.NoError(t, err)
	_, err = svc.Update(ctx, auditor, "note", aliceKey, map[string]any{"body": "edit"})
	assert.ErrorIs(t, err, access.ErrAccessDenied)

	updated, err := svc.Update(ctx, editor, "note", aliceKey, map[string]any{"body": "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated["body"])
	assert.Equal(t, int64(1), updated["user_id"], "update keeps the owner")
	assert.NoError(t, svc.Delete(ctx, editor, "note", aliceKey))
}

func TestServiceInvalidKey(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	u := user(1, model.AllPrivileges())

	for _, key := range []string{"abc", "", "99"} {
		_, err := svc.Get(ctx, u, "note", key)
		assert.ErrorIs(t, err, ErrRecordNotFound, "key %q", key)
	}
}

func TestServiceSanitizer(t *testing.T) {
	svc := newService(t, WithSanitizer(bluemonday.UGCPolicy()))
	ctx := context.Background()

	item, err := svc.Create(ctx, user(1, model.AllPrivileges()), "note",
		map[string]any{"body": `<b>bold</b><script>alert(1)</script>`})
	require.NoError(t, err)
	assert.Equal(t, "<b>bold</b>", item["body"])
}

func TestServiceDescribe(t *testing.T) {
	svc := newService(t)

	ct, err := svc.Describe(context.Background(), "note")
	require.NoError(t, err)
	assert.Equal(t, "notes", ct.Table)

	_, err = svc.Describe(context.Background(), "user")
	assert.ErrorIs(t, err, schema.ErrContentTypeNotFound)
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
