package schema

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"github.com/olegiv/ocms-headless/internal/store"
)

func TestDescribe(t *testing.T) {
	columns := []store.Column{
		{Name: "id", Type: "integer", PrimaryKey: true, AutoIncrement: true},
		{Name: "title", Type: "varchar(100)"},
		{Name: "body", Type: "text", Nullable: true},
		{Name: "views", Type: "integer", HasDefault: true},
		{Name: "created_at", Type: "datetime", HasDefault: true},
		{Name: "user_id", Type: "integer"},
	}

	ct, err := Describe("post", columns)
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}

	want := &ContentType{
		Name:       "post",
		Table:      "posts",
		PrimaryKey: "id",
		Owner:      "user_id",
		Fields: []Field{
			{Name: "id", Type: FieldType{Kind: KindInteger, Bits: 64}, DeclaredType: "integer", PrimaryKey: true, AutoIncrement: true, System: true},
			{Name: "title", Type: FieldType{Kind: KindText, MaxLength: 100}, DeclaredType: "varchar(100)"},
			{Name: "body", Type: FieldType{Kind: KindText}, DeclaredType: "text", Nullable: true},
			{Name: "views", Type: FieldType{Kind: KindInteger, Bits: 64}, DeclaredType: "integer", HasDefault: true},
			{Name: "created_at", Type: FieldType{Kind: KindDateTime}, DeclaredType: "datetime", HasDefault: true, System: true},
			{Name: "user_id", Type: FieldType{Kind: KindInteger, Bits: 64}, DeclaredType: "integer", System: true},
		},
	}
	if diff := cmp.Diff(want, ct); diff != "" {
		t.Errorf("Describe() mismatch (-want +got):\n%s", diff)
	}

	editable := ct.Editable()
	if len(editable) != 3 || editable[0].Name != "title" || editable[2].Name != "views" {
		t.Errorf("Editable() = %v", editable)
	}
	if f, ok := ct.Field("title"); !ok || !f.Required() {
		t.Errorf("title should be a required field")
	}
	if f, _ := ct.Field("views"); f.Required() {
		t.Errorf("views has a default and should not be required")
	}
	if _, ok := ct.Field("nope"); ok {
		t.Errorf("Field(nope) found")
	}
}

func TestDescribeRejectsTables(t *testing.T) {
	tests := map[string][]store.Column{
		"no owner": {
			{Name: "id", Type: "integer", PrimaryKey: true},
			{Name: "title", Type: "text"},
		},
		"no primary key": {
			{Name: "title", Type: "text"},
			{Name: "user_id", Type: "integer"},
		},
		"composite primary key": {
			{Name: "a", Type: "integer", PrimaryKey: true},
			{Name: "b", Type: "integer", PrimaryKey: true},
			{Name: "user_id", Type: "integer"},
		},
	}
	for name, columns := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Describe("thing", columns); !errors.Is(err, ErrContentTypeNotFound) {
				t.Errorf("Describe() error = %v, want ErrContentTypeNotFound", err)
			}
		})
	}
}

func TestIntrospectInvalidNameSkipsStorage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer func() { _ = db.Close() }()

	d, _ := store.DialectFor(store.DriverMySQL)
	in := NewIntrospector(db, d)

	for _, name := range []string{"", "post1", "post`; DROP TABLE users; --", "a b"} {
		if _, err := in.Introspect(context.Background(), name); !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("Introspect(%q) error = %v, want ErrInvalidIdentifier", name, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected storage access: %v", err)
	}
}

func TestIntrospectReservedNamesSkipStorage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer func() { _ = db.Close() }()

	d, _ := store.DialectFor(store.DriverMySQL)
	in := NewIntrospector(db, d)

	for _, name := range []string{"user", "User", "session"} {
		if _, err := in.Introspect(context.Background(), name); !errors.Is(err, ErrContentTypeNotFound) {
			t.Errorf("Introspect(%q) error = %v, want ErrContentTypeNotFound", name, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected storage access: %v", err)
	}
}

func TestIntrospectStorageError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer func() { _ = db.Close() }()

	boom := errors.New("connection refused")
	mock.ExpectQuery("SHOW COLUMNS FROM `posts`").WillReturnError(boom)

	d, _ := store.DialectFor(store.DriverMySQL)
	_, err = NewIntrospector(db, d).Introspect(context.Background(), "post")
	if !errors.Is(err, boom) {
		t.Fatalf("Introspect() error = %v, want wrapped storage error", err)
	}
	if errors.Is(err, ErrContentTypeNotFound) {
		t.Fatal("storage error reported as ErrContentTypeNotFound")
	}
}

func TestIntrospectSQLite(t *testing.T) {
	db, dialect, err := store.Open(store.DefaultDBConfig(store.DriverSQLite, filepath.Join(t.TempDir(), "schema.db")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = db.Close() }()
	if err := store.Migrate(db, dialect); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	for _, stmt := range []string{
		`CREATE TABLE posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title VARCHAR(100) NOT NULL,
			published BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			user_id INTEGER NOT NULL
		)`,
		`CREATE TABLE tags (id INTEGER PRIMARY KEY, label TEXT NOT NULL)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("creating table: %v", err)
		}
	}

	in := NewIntrospector(db, dialect)
	ctx := context.Background()

	ct, err := in.Introspect(ctx, "post")
	if err != nil {
		t.Fatalf("Introspect(post) error: %v", err)
	}
	names := make([]string, 0)
	for _, f := range ct.Editable() {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"title", "published"}, names); diff != "" {
		t.Errorf("editable fields mismatch (-want +got):\n%s", diff)
	}
	if f, _ := ct.Field("published"); f.Type.Kind != KindBoolean {
		t.Errorf("published kind = %s, want boolean", f.Type.Kind)
	}

	for _, name := range []string{"widget", "tag"} {
		if _, err := in.Introspect(ctx, name); !errors.Is(err, ErrContentTypeNotFound) {
			t.Errorf("Introspect(%s) error = %v, want ErrContentTypeNotFound", name, err)
		}
	}
}
