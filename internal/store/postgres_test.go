package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
)

var pgColumnHeaders = []string{
	"column_name", "data_type", "udt_name",
	"character_maximum_length", "numeric_precision", "numeric_scale",
	"is_nullable", "column_default", "is_identity", "is_primary",
}

func TestPostgresColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("posts").
		WillReturnRows(sqlmock.NewRows(pgColumnHeaders).
			AddRow("id", "bigint", "int8", nil, 64, 0, "NO", "nextval('posts_id_seq'::regclass)", "NO", true).
			AddRow("title", "character varying", "varchar", 100, nil, nil, "NO", nil, "NO", false).
			AddRow("views", "integer", "int4", nil, 32, 0, "NO", "0", "NO", false).
			AddRow("price", "numeric", "numeric", nil, 10, 2, "YES", nil, "NO", false).
			AddRow("status", "USER-DEFINED", "post_status", nil, nil, nil, "NO", "'draft'::post_status", "NO", false).
			AddRow("user_id", "bigint", "int8", nil, 64, 0, "NO", nil, "NO", false))
	mock.ExpectQuery("FROM pg_type").
		WithArgs("post_status").
		WillReturnRows(sqlmock.NewRows([]string{"enumlabel"}).AddRow("draft").AddRow("published"))

	got, err := postgresDialect{}.Columns(context.Background(), db, "posts")
	if err != nil {
		t.Fatalf("Columns() error: %v", err)
	}

	want := []Column{
		{Name: "id", Type: "int8", HasDefault: true, PrimaryKey: true, AutoIncrement: true},
		{Name: "title", Type: "varchar(100)"},
		{Name: "views", Type: "int4", HasDefault: true},
		{Name: "price", Type: "numeric(10,2)", Nullable: true},
		{Name: "status", Type: "enum", HasDefault: true, EnumValues: []string{"draft", "published"}},
		{Name: "user_id", Type: "int8"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Columns() mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestPostgresColumnsMissingTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("widgets").
		WillReturnRows(sqlmock.NewRows(pgColumnHeaders))

	_, err = postgresDialect{}.Columns(context.Background(), db, "widgets")
	if !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("Columns() error = %v, want ErrTableNotFound", err)
	}
}

func TestPgDeclaredType(t *testing.T) {
	null := sql.NullInt64{}
	n := func(v int64) sql.NullInt64 { return sql.NullInt64{Int64: v, Valid: true} }

	tests := []struct {
		dataType, udt string
		charLen       sql.NullInt64
		prec, scale   sql.NullInt64
		want          string
	}{
		{"character varying", "varchar", n(50), null, null, "varchar(50)"},
		{"character varying", "varchar", null, null, null, "varchar"},
		{"character", "bpchar", n(2), null, null, "varchar(2)"},
		{"numeric", "numeric", null, n(8), n(3), "numeric(8,3)"},
		{"numeric", "numeric", null, null, null, "numeric"},
		{"timestamp with time zone", "timestamptz", null, null, null, "timestamp with time zone"},
		{"USER-DEFINED", "Mood", null, null, null, "mood"},
		{"boolean", "bool", null, null, null, "boolean"},
		{"smallint", "int2", null, n(16), n(0), "int2"},
		{"integer", "int4", null, n(32), n(0), "int4"},
		{"bigint", "int8", null, n(64), n(0), "int8"},
	}
	for _, tt := range tests {
		got := pgDeclaredType(tt.dataType, tt.udt, tt.charLen, tt.prec, tt.scale)
		if got != tt.want {
			t.Errorf("pgDeclaredType(%q) = %q, want %q", tt.dataType, got, tt.want)
		}
	}
}
