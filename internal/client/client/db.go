package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/gophershop/internal/client/migrations"
	"github.com/dmitrijs2005/gophershop/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophershop/internal/filex"

	_ "modernc.org/sqlite"
)

// Repositories is the opened local state.
type Repositories struct {
	KV kv.Repository
	db *sql.DB
}

func (r *Repositories) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating when needed) the SQLite state file at dsn and
// migrates it. ":memory:" gives a throwaway database.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	if _, err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection: an in-memory database lives per connection, and a
	// single writer avoids SQLITE_BUSY from the background snapshot writer
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}

	return &Repositories{KV: kv.NewSQLiteRepository(db), db: db}, nil
}
