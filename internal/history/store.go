// Package history records prompt runs in SQLite so they can be listed later
// with `breakdown history`.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultLimit bounds List when no positive limit is given.
const DefaultLimit = 20

// createdAtLayout is fixed width so created_at sorts as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record inserts e. A missing ID or timestamp is filled in; the stored ID is
// returned.
func (s *Store) Record(ctx context.Context, e Entry) (string, error) {
	if e.Surface == "" {
		return "", fmt.Errorf("surface is empty")
	}
	if e.Stage == "" {
		return "", fmt.Errorf("stage is empty")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO prompt_runs(
  id, surface, profile, directive, layer, input_layer, adaptation, source, destination,
  template, fallback_used, digest, stage, error_kind, error_message, created_at
)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
		e.ID, string(e.Surface), e.Profile,
		nullable(e.Directive), nullable(e.Layer), nullable(e.InputLayer), nullable(e.Adaptation),
		nullable(e.Source), nullable(e.Destination), nullable(e.Template),
		boolInt(e.FallbackUsed), nullable(e.Digest), e.Stage,
		nullable(e.ErrorKind), nullable(e.ErrorMessage),
		e.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return e.ID, nil
}

// List returns the newest runs first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT
  id, surface, profile, directive, layer, input_layer, adaptation, source, destination,
  template, fallback_used, digest, stage, error_kind, error_message, created_at
FROM prompt_runs
ORDER BY created_at DESC, rowid DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		var surface, createdAtS string
		var directive, layer, inputLayer, adaptation sql.NullString
		var source, destination, template, digest sql.NullString
		var errorKind, errorMessage sql.NullString
		var fallback int
		if err := rows.Scan(
			&e.ID, &surface, &e.Profile, &directive, &layer, &inputLayer, &adaptation, &source, &destination,
			&template, &fallback, &digest, &e.Stage, &errorKind, &errorMessage, &createdAtS,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		e.Surface = Surface(surface)
		e.Directive = directive.String
		e.Layer = layer.String
		e.InputLayer = inputLayer.String
		e.Adaptation = adaptation.String
		e.Source = source.String
		e.Destination = destination.String
		e.Template = template.String
		e.FallbackUsed = fallback != 0
		e.Digest = digest.String
		e.ErrorKind = errorKind.String
		e.ErrorMessage = errorMessage.String
		if t, err := time.Parse(time.RFC3339Nano, createdAtS); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
