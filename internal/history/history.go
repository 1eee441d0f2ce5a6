// Package history keeps a durable ledger of analysis runs in a local
// SQLite database. The ledger is advisory: annotation itself never depends
// on it, and callers are expected to degrade gracefully when the database
// cannot be opened.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Nita121388/Merge-Annotator/internal/analysis"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_history (
	id          TEXT PRIMARY KEY,
	branch_dir  TEXT NOT NULL,
	trunk_dir   TEXT NOT NULL,
	merge_dir   TEXT NOT NULL,
	base_dir    TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	file_count  INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_analysis_history_created_at
	ON analysis_history (created_at DESC);
`

// Entry is one ledger row.
type Entry struct {
	ID         string `json:"id"`
	BranchDir  string `json:"branch_dir"`
	TrunkDir   string `json:"trunk_dir"`
	MergeDir   string `json:"merge_dir"`
	BaseDir    string `json:"base_dir,omitempty"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	FileCount  int    `json:"file_count"`
	CreatedAt  string `json:"created_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}

// Ledger wraps the SQLite handle. Safe for concurrent use; database/sql
// serializes access to the single connection the driver hands out.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger database at path and ensures
// the schema exists.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: ensure schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close releases the database handle.
func (l *Ledger) Close() error { return l.db.Close() }

// Start records a run that has begun.
func (l *Ledger) Start(ctx context.Context, id string, roots analysis.Roots) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO analysis_history
			(id, branch_dir, trunk_dir, merge_dir, base_dir, status, created_at)
		VALUES (?, ?, ?, ?, ?, 'running', ?)`,
		id, roots.Branch, roots.Trunk, roots.Merge, roots.Base, now())
	return err
}

// Finish marks a run completed with its analyzed file count.
func (l *Ledger) Finish(ctx context.Context, id string, fileCount int) error {
	_, err := l.db.ExecContext(ctx, `
		UPDATE analysis_history
		SET status = 'completed', file_count = ?, finished_at = ?
		WHERE id = ?`,
		fileCount, now(), id)
	return err
}

// Fail marks a run failed with its error text.
func (l *Ledger) Fail(ctx context.Context, id, errText string) error {
	_, err := l.db.ExecContext(ctx, `
		UPDATE analysis_history
		SET status = 'failed', error = ?, finished_at = ?
		WHERE id = ?`,
		errText, now(), id)
	return err
}

// List returns entries newest first, skipping offset rows. The limit is
// clamped to [1, 200], a negative offset to 0.
func (l *Ledger) List(ctx context.Context, limit, offset int) ([]Entry, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, branch_dir, trunk_dir, merge_dir, base_dir,
		       status, error, file_count, created_at, finished_at
		FROM analysis_history
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.BranchDir, &e.TrunkDir, &e.MergeDir, &e.BaseDir,
			&e.Status, &e.Error, &e.FileCount, &e.CreatedAt, &e.FinishedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
