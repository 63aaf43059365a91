// Package storage opens the SQLite database that backs run history.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens (and creates if needed) the SQLite database at path and
// ensures required tables exist.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; CLI runs are short-lived and serve handles one request at a time per connection.
	db.SetMaxOpenConns(1)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(pctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.ExecContext(pctx, "PRAGMA journal_mode = WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal_mode: %w", err)
	}
	if err := BootstrapSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// BootstrapSQLite creates tables/indexes if missing.
func BootstrapSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prompt_runs (
  id            TEXT PRIMARY KEY,
  surface       TEXT NOT NULL,
  profile       TEXT NOT NULL,
  directive     TEXT,
  layer         TEXT,
  input_layer   TEXT,
  adaptation    TEXT,
  source        TEXT,
  destination   TEXT,
  template      TEXT,
  fallback_used INTEGER NOT NULL DEFAULT 0,
  digest        TEXT,
  stage         TEXT NOT NULL,
  error_kind    TEXT,
  error_message TEXT,
  created_at    TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS prompt_runs_created_at_idx ON prompt_runs(created_at);`,
		`CREATE INDEX IF NOT EXISTS prompt_runs_error_kind_idx ON prompt_runs(error_kind);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap sqlite: %w", err)
		}
	}
	return nil
}
