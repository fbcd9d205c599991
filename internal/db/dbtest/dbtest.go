// Package dbtest opens throwaway SQLite databases with the production schema.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	intdb "fumotion/internal/db"

	_ "modernc.org/sqlite"
)

const pragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate&_time_format=sqlite"

// Open returns a migrated database in t's temp dir, closed on cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + pragmas
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := intdb.Migrate(context.Background(), db, intdb.DialectSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
