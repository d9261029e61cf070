package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"mysql", DriverMySQL},
		{"MySQL", DriverMySQL},
		{"postgres", DriverPostgres},
		{"postgresql", DriverPostgres},
		{"pgx", DriverPostgres},
		{"sqlite", DriverSQLite},
		{"sqlite3", DriverSQLite},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := DialectFor(tt.driver)
			if err != nil {
				t.Fatalf("DialectFor(%q) error: %v", tt.driver, err)
			}
			if d.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", d.Name(), tt.want)
			}
		})
	}

	if _, err := DialectFor("oracle"); err == nil {
		t.Error("DialectFor(oracle) returned no error")
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		dialect Dialect
		ident   string
		want    string
	}{
		{mysqlDialect{}, "posts", "`posts`"},
		{mysqlDialect{}, "we`ird", "`we``ird`"},
		{postgresDialect{}, "posts", `"posts"`},
		{postgresDialect{}, `we"ird`, `"we""ird"`},
		{sqliteDialect{}, "posts", `"posts"`},
	}
	for _, tt := range tests {
		if got := tt.dialect.Quote(tt.ident); got != tt.want {
			t.Errorf("%s Quote(%q) = %s, want %s", tt.dialect.Name(), tt.ident, got, tt.want)
		}
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		dialect    Dialect
		err        error
		wantDup    bool
		wantColumn string
		wantTable  bool
	}{
		{
			name:       "mysql duplicate",
			dialect:    mysqlDialect{},
			err:        &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'bob' for key 'users.username'"},
			wantDup:    true,
			wantColumn: "username",
		},
		{
			name:       "mysql duplicate old format",
			dialect:    mysqlDialect{},
			err:        &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'bob' for key 'username'"},
			wantDup:    true,
			wantColumn: "username",
		},
		{
			name:      "mysql missing table",
			dialect:   mysqlDialect{},
			err:       &mysql.MySQLError{Number: 1146, Message: "Table 'cms.widgets' doesn't exist"},
			wantTable: true,
		},
		{
			name:    "mysql other",
			dialect: mysqlDialect{},
			err:     &mysql.MySQLError{Number: 1064, Message: "syntax error"},
		},
		{
			name:       "postgres duplicate from detail",
			dialect:    postgresDialect{},
			err:        &pgconn.PgError{Code: "23505", Detail: "Key (username)=(bob) already exists."},
			wantDup:    true,
			wantColumn: "username",
		},
		{
			name:       "postgres duplicate composite",
			dialect:    postgresDialect{},
			err:        &pgconn.PgError{Code: "23505", Detail: "Key (a, b)=(1, 2) already exists."},
			wantDup:    true,
			wantColumn: "",
		},
		{
			name:      "postgres missing table",
			dialect:   postgresDialect{},
			err:       fmt.Errorf("query: %w", &pgconn.PgError{Code: "42P01"}),
			wantTable: true,
		},
		{
			name:       "sqlite duplicate modernc",
			dialect:    sqliteDialect{},
			err:        errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)"),
			wantDup:    true,
			wantColumn: "username",
		},
		{
			name:       "sqlite duplicate mattn",
			dialect:    sqliteDialect{},
			err:        errors.New("UNIQUE constraint failed: posts.slug"),
			wantDup:    true,
			wantColumn: "slug",
		},
		{
			name:       "sqlite duplicate composite",
			dialect:    sqliteDialect{},
			err:        errors.New("UNIQUE constraint failed: posts.a, posts.b"),
			wantDup:    true,
			wantColumn: "",
		},
		{
			name:      "sqlite missing table",
			dialect:   sqliteDialect{},
			err:       errors.New("SQL logic error: no such table: widgets (1)"),
			wantTable: true,
		},
		{
			name:    "sqlite other",
			dialect: sqliteDialect{},
			err:     errors.New("database is locked"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.dialect, tt.err)

			var dup *DuplicateKeyError
			if isDup := errors.As(got, &dup); isDup != tt.wantDup {
				t.Fatalf("duplicate = %v, want %v (err %v)", isDup, tt.wantDup, got)
			}
			if tt.wantDup && dup.Column != tt.wantColumn {
				t.Errorf("Column = %q, want %q", dup.Column, tt.wantColumn)
			}
			if isTable := errors.Is(got, ErrTableNotFound); isTable != tt.wantTable {
				t.Errorf("table not found = %v, want %v (err %v)", isTable, tt.wantTable, got)
			}
			if !errors.Is(got, tt.err) && !tt.wantTable {
				t.Errorf("classified error does not wrap the original")
			}
		})
	}

	if ClassifyError(sqliteDialect{}, nil) != nil {
		t.Error("ClassifyError(nil) != nil")
	}
}
