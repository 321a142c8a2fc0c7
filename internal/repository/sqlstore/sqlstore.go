// Package sqlstore implements the repository interfaces over database/sql.
//
// ONE STORE, TWO DIALECTS:
// The same queries run against SQLite (the default, pure-Go
// modernc.org/sqlite driver) and PostgreSQL (jackc/pgx through its
// database/sql adapter). Queries are written with "?" placeholders and
// rebound to "$1, $2, ..." for Postgres. Both engines support
// INSERT ... RETURNING, so ID retrieval is the same everywhere.
//
// DATABASE/SQL OVERVIEW:
//   - sql.DB     : a connection pool (NOT a single connection!)
//   - sql.Row    : a single result row
//   - sql.Rows   : multiple result rows (must be closed!)
//
// The pool is bounded by MaxOpenConns. When every connection is busy, a
// query waits for one to be released, but the wait is tied to the caller's
// context: a cancelled request stops waiting instead of hanging forever.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/sakif/taskboard/internal/repository/sqlstore/migrations"

	// Driver registration happens in init(): "pgx" for Postgres. The SQLite
	// driver ("sqlite") is registered by the named import in errors.go.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Dialect selects the SQL engine.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect validates a configured driver name.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case DialectSQLite, DialectPostgres:
		return Dialect(s), nil
	default:
		return "", fmt.Errorf("sqlstore: unknown dialect %q (want %q or %q)", s, DialectSQLite, DialectPostgres)
	}
}

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Dialect) gooseDialect() goose.Dialect {
	if d == DialectPostgres {
		return goose.DialectPostgres
	}
	return goose.DialectSQLite3
}

// Config describes how to open the store.
type Config struct {
	Dialect Dialect
	// DSN is a file path (or ":memory:") for SQLite and a connection URL
	// for Postgres.
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB wraps a sql.DB connection pool and vends the user and task stores.
type DB struct {
	conn    *sql.DB
	dialect Dialect
}

// SQLiteDSN turns a file path into a modernc.org/sqlite DSN with the
// per-connection pragmas this store relies on.
//
// PRAGMAS IN THE DSN:
// SQLite pragmas like foreign_keys apply to ONE connection. Running
// "PRAGMA foreign_keys=ON" once only configures whichever pooled connection
// happened to execute it. Putting them in the DSN makes the driver apply
// them to every connection it opens.
func SQLiteDSN(path string) string {
	return path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_time_format=sqlite"
}

// Open creates the pool and verifies it can reach the database.
// It does not touch the schema; call Migrate (or use New) for that.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	dsn := cfg.DSN
	if cfg.Dialect == DialectSQLite {
		dsn = SQLiteDSN(cfg.DSN)
	}

	// sql.Open() does NOT actually open a connection: it just creates a pool manager.
	conn, err := sql.Open(cfg.Dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening %s database: %w", cfg.Dialect, err)
	}

	maxOpen := cfg.MaxOpenConns
	if cfg.Dialect == DialectSQLite && cfg.DSN == ":memory:" {
		// every new connection to ":memory:" is a brand-new empty database
		maxOpen = 1
	}
	if maxOpen > 0 {
		conn.SetMaxOpenConns(maxOpen)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	// Ping forces a real connection so a bad path or unreachable host fails
	// here instead of on the first request.
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: pinging %s database: %w", cfg.Dialect, err)
	}

	return &DB{conn: conn, dialect: cfg.Dialect}, nil
}

// New opens the store and brings the schema up to date.
func New(ctx context.Context, cfg Config) (*DB, error) {
	db, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Dialect reports which engine the store talks to.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Users returns the credential store.
func (db *DB) Users() *UserStore {
	return &UserStore{db: db}
}

// Tasks returns the task store.
func (db *DB) Tasks() *TaskStore {
	return &TaskStore{db: db}
}

// Migrate applies pending goose migrations for the store's dialect and
// returns the versions it applied (empty when already up to date).
//
// A goose.Provider is used instead of goose's package-level functions so
// that two stores (e.g. parallel tests) never share global goose state.
func (db *DB) Migrate(ctx context.Context) ([]int64, error) {
	fsys, err := fs.Sub(migrations.FS, string(db.dialect))
	if err != nil {
		return nil, fmt.Errorf("sqlstore: locating %s migrations: %w", db.dialect, err)
	}

	provider, err := goose.NewProvider(db.dialect.gooseDialect(), db.conn, fsys)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: running migrations: %w", err)
	}

	applied := make([]int64, 0, len(results))
	for _, r := range results {
		applied = append(applied, r.Source.Version)
	}
	return applied, nil
}

// q rewrites a "?"-placeholder query for the store's dialect.
func (db *DB) q(query string) string {
	return rebind(db.dialect, query)
}
