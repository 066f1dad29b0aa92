package migrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApply_RunsOncePerFile(t *testing.T) {
	db := openMemory(t)
	fsys := fstest.MapFS{
		"m/0001_a.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;")},
		"m/0002_b.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
		"m/README.md":  {Data: []byte("ignored")},
	}

	require.NoError(t, Apply(context.Background(), db, fsys, "m", SQLite))
	// A second run would fail on CREATE TABLE without IF NOT EXISTS if re-executed.
	require.NoError(t, Apply(context.Background(), db, fsys, "m", SQLite))

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Equal(t, 2, n)
}

func TestApply_FailedMigrationIsNotRecorded(t *testing.T) {
	db := openMemory(t)
	fsys := fstest.MapFS{
		"0001_bad.sql": {Data: []byte("CREATE TABLE broken (")},
	}

	err := Apply(context.Background(), db, fsys, ".", SQLite)
	require.Error(t, err)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Zero(t, n)
}

func TestExtractUp(t *testing.T) {
	assert.Equal(t, "\nUP\n", ExtractUp("-- +migrate Up\nUP\n-- +migrate Down\nDOWN"))
	assert.Equal(t, "PLAIN", ExtractUp("PLAIN"))
}
