package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sakif/taskboard/internal/config"
	"github.com/sakif/taskboard/internal/repository/sqlstore"
)

// openStore opens the configured database. With migrate set the schema is
// brought up to date as well.
func openStore(ctx context.Context, d config.DBConfig, migrate bool) (*sqlstore.DB, error) {
	dialect, err := sqlstore.ParseDialect(d.Driver)
	if err != nil {
		return nil, err
	}

	if dialect == sqlstore.DialectSQLite && d.Path != ":memory:" {
		// os.MkdirAll is `mkdir -p`: the data directory may not exist yet
		dir := filepath.Dir(d.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	cfg := sqlstore.Config{
		Dialect:         dialect,
		DSN:             d.DSN(),
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
	}
	if migrate {
		return sqlstore.New(ctx, cfg)
	}
	return sqlstore.Open(ctx, cfg)
}
