package main

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	outbox "github.com/vixgo/sync"
	"github.com/vixgo/sync/filestore"
	"github.com/vixgo/sync/sqlstore"
)

// openStore builds the configured Store backend. For the two SQL
// backends it also ensures the table exists, matching a fresh-start
// developer workflow; a production deployment would run migrations
// separately and skip EnsureSchema.
func openStore(cfg Config) (outbox.Store, error) {
	switch cfg.Store.Kind {
	case "", "file":
		return filestore.New(filestore.Config{FilePath: cfg.Store.Path}), nil

	case "sqlite":
		db, err := sql.Open("sqlite", cfg.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}

		return newSQLStore(db, sqlstore.DialectSQLite, cfg.Store.Table)

	case "mysql":
		db, err := sql.Open("mysql", cfg.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}

		return newSQLStore(db, sqlstore.DialectMySQL, cfg.Store.Table)

	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}
}

func newSQLStore(db *sql.DB, dialect sqlstore.Dialect, table string) (outbox.Store, error) {
	opts := []sqlstore.Option{sqlstore.WithDialect(dialect)}
	if table != "" {
		opts = append(opts, sqlstore.WithTable(table))
	}

	store, err := sqlstore.New(db, opts...)
	if err != nil {
		return nil, fmt.Errorf("construct sql store: %w", err)
	}
	if err := store.EnsureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return store, nil
}
