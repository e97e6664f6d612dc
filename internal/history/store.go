package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"database/sql"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    batch_id   TEXT NOT NULL,
    url        TEXT NOT NULL,
    path       TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_downloads_batch ON downloads(batch_id);
`

// Entry is one completed download on record
type Entry struct {
	ID        int64
	BatchID   string
	URL       string
	Path      string
	CreatedAt time.Time
}

// Store persists completed downloads in SQLite so files can be listed and
// cleaned up across program runs. Queue state is never persisted here; only
// finished results are.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends one completed download. Satisfies download.HistoryRecorder.
func (s *Store) Record(batchID, url, path string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(
		`INSERT INTO downloads (batch_id, url, path, created_at) VALUES (?, ?, ?, ?)`,
		batchID, url, path, timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first. A limit of 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, batch_id, url, path, created_at FROM downloads ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.BatchID, &e.URL, &e.Path, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune removes every history entry, optionally deleting the recorded files
// from disk first. It returns how many entries and files were removed;
// already-missing files are not an error.
func (s *Store) Prune(ctx context.Context, deleteFiles bool) (entries, files int, err error) {
	all, err := s.List(ctx, 0)
	if err != nil {
		return 0, 0, err
	}

	if deleteFiles {
		for _, e := range all {
			if removeErr := os.Remove(e.Path); removeErr != nil {
				if errors.Is(removeErr, fs.ErrNotExist) {
					continue
				}
				return 0, files, fmt.Errorf("delete %s: %w", e.Path, removeErr)
			}
			files++
		}
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM downloads`)
	if err != nil {
		return 0, files, fmt.Errorf("prune history: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), files, nil
}
