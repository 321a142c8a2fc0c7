package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TESTING WITH A REAL SQLITE FILE:
// Each test gets its own database file inside t.TempDir(), which Go removes
// when the test ends. A file (rather than ":memory:") lets the pool open
// several connections that all see the same data, just like production.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(context.Background(), Config{
		Dialect:      DialectSQLite,
		DSN:          filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 4,
	})
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	// t.Cleanup registers a function to run when the test finishes.
	t.Cleanup(func() { db.Close() })
	return db
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{in: "sqlite", want: DialectSQLite},
		{in: "postgres", want: DialectPostgres},
		{in: "mysql", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_AppliesMigrations(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{"users", "tasks"} {
		var count int
		err := db.conn.QueryRow(
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	// New() already migrated; a second run has nothing to apply.
	applied, err := db.Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestOpen_WithoutMigrateAppliesAllVersions(t *testing.T) {
	db, err := Open(context.Background(), Config{
		Dialect: DialectSQLite,
		DSN:     filepath.Join(t.TempDir(), "fresh.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	applied, err := db.Migrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, applied)
}

func TestOpen_MemoryDatabaseUsesSingleConnection(t *testing.T) {
	db, err := New(context.Background(), Config{
		Dialect:      DialectSQLite,
		DSN:          ":memory:",
		MaxOpenConns: 10,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assert.Equal(t, 1, db.conn.Stats().MaxOpenConnections)
}

func TestForeignKeysEnforced(t *testing.T) {
	db := newTestDB(t)

	// user 999 doesn't exist; with foreign_keys on, the insert must fail
	_, err := db.conn.Exec(
		`INSERT INTO tasks (user_id, title) VALUES (?, ?)`, 999, "orphan",
	)
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	q := `UPDATE tasks SET title = COALESCE(?, title) WHERE id = ? AND user_id = ?`

	assert.Equal(t, q, rebind(DialectSQLite, q))
	assert.Equal(t,
		`UPDATE tasks SET title = COALESCE($1, title) WHERE id = $2 AND user_id = $3`,
		rebind(DialectPostgres, q),
	)
	assert.Equal(t, `SELECT 1`, rebind(DialectPostgres, `SELECT 1`))
}
