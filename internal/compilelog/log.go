// Package compilelog provides a SQLite-backed audit log of artifact
// compiles. The log is bookkeeping, not a source of truth: the
// artifact itself is always recomputed from the thread's message
// history.
package compilelog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nikolaef43/brenner-bot-sub013/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS compiles (
	thread_id    TEXT    NOT NULL,
	version      INTEGER NOT NULL,
	checksum     TEXT    NOT NULL DEFAULT '',
	applied      INTEGER NOT NULL DEFAULT 0,
	skipped      INTEGER NOT NULL DEFAULT 0,
	lint_errors  INTEGER NOT NULL DEFAULT 0,
	lint_warnings INTEGER NOT NULL DEFAULT 0,
	message_id   INTEGER NOT NULL DEFAULT 0,
	compiled_at  DATETIME NOT NULL,
	PRIMARY KEY (thread_id, version)
);

CREATE INDEX IF NOT EXISTS idx_compiles_thread ON compiles(thread_id, compiled_at);
`

// Record is one compile of one thread.
type Record struct {
	ThreadID     string    `json:"thread_id"`
	Version      int       `json:"version"`
	Checksum     string    `json:"checksum"`
	Applied      int       `json:"applied"`
	Skipped      int       `json:"skipped"`
	LintErrors   int       `json:"lint_errors"`
	LintWarnings int       `json:"lint_warnings"`
	MessageID    int64     `json:"message_id"`
	CompiledAt   time.Time `json:"compiled_at"`
}

// Log defines the compile log operations. Consumers should depend on
// this interface rather than the concrete *DB to facilitate testing.
type Log interface {
	Append(rec Record) error
	Latest(threadID string) (*Record, error)
	History(threadID string, limit int) ([]Record, error)
	Close() error
}

// DB wraps a sql.DB with compile log operations.
type DB struct {
	conn *sql.DB
}

var _ Log = (*DB)(nil)

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("compilelog: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("compilelog: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("compilelog: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Append records a compile. A (thread, version) pair can be recorded
// once; a replay of the same version is a conflict.
func (db *DB) Append(rec Record) error {
	_, err := db.conn.Exec(`
		INSERT INTO compiles (thread_id, version, checksum, applied, skipped,
			lint_errors, lint_warnings, message_id, compiled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ThreadID, rec.Version, rec.Checksum, rec.Applied, rec.Skipped,
		rec.LintErrors, rec.LintWarnings, rec.MessageID, rec.CompiledAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("compilelog: append: %w", err)
	}
	return nil
}

// Latest returns the most recent compile of a thread, or ErrNotFound.
func (db *DB) Latest(threadID string) (*Record, error) {
	row := db.conn.QueryRow(`
		SELECT thread_id, version, checksum, applied, skipped,
			lint_errors, lint_warnings, message_id, compiled_at
		FROM compiles WHERE thread_id = ?
		ORDER BY version DESC LIMIT 1
	`, threadID)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("compilelog: latest: %w", err)
	}
	return rec, nil
}

// History returns a thread's compiles, newest first.
func (db *DB) History(threadID string, limit int) ([]Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT thread_id, version, checksum, applied, skipped,
			lint_errors, lint_warnings, message_id, compiled_at
		FROM compiles WHERE thread_id = ?
		ORDER BY version DESC LIMIT ?
	`, threadID, limit)
	if err != nil {
		return nil, fmt.Errorf("compilelog: history: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("compilelog: scan: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanRecord(scan func(dest ...any) error) (*Record, error) {
	var rec Record
	if err := scan(&rec.ThreadID, &rec.Version, &rec.Checksum, &rec.Applied,
		&rec.Skipped, &rec.LintErrors, &rec.LintWarnings, &rec.MessageID,
		&rec.CompiledAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
