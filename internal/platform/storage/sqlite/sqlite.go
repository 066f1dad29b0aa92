// Package sqlite opens the embedded single-node database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"marketlevy/internal/platform/storage/migrate"
	"marketlevy/internal/platform/storage/migrations"
)

// Open opens path (":memory:" for an ephemeral database) and applies the
// embedded migrations. The pool is limited to one connection so writers are
// serialised by database/sql instead of surfacing SQLITE_BUSY.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := ":memory:?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn = "file:" + filepath.Clean(path) +
			"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate.Apply(ctx, db, migrations.SQLite, "sqlite", migrate.SQLite); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

// IsUniqueViolation reports whether err is a unique or primary key
// violation, optionally on the named index.
func IsUniqueViolation(err error, index string) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
	default:
		return false
	}
	if index == "" {
		return true
	}
	// SQLite reports the indexed columns, not the index name.
	return strings.Contains(strings.ToLower(err.Error()), strings.ToLower(index))
}

func ToMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func FromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}
