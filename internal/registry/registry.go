// Package registry provides a SQLite-backed index of ingested documents.
// The vector store itself holds no listable metadata, so the registry is what
// backs the document listing endpoint and the CLI. It is an index, not the
// source of truth: losing it leaves every collection intact and queryable by
// ID.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Document is one registry entry for an ingested document.
type Document struct {
	// ID is the collection identifier assigned at ingestion.
	ID string `json:"id"`

	// FileName is the original upload file name.
	FileName string `json:"file_name"`

	// IngestedAt is when the document was recorded.
	IngestedAt time.Time `json:"ingested_at"`
}

// Registry persists and lists ingested document metadata.
// Implementations must be safe for concurrent use.
type Registry interface {
	// Record persists one document entry.
	Record(ctx context.Context, id, fileName string) error
	// List returns all recorded documents, newest first.
	List(ctx context.Context) ([]Document, error)
	// Close releases any resources held by the registry.
	Close() error
}

// SQLiteRegistry is a Registry backed by a local SQLite database.
type SQLiteRegistry struct {
	db *sql.DB
}

// DefaultDBPath returns the default path for the document registry database.
// It resolves to ~/.studykit/documents.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("registry: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".studykit")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("registry: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "documents.db"), nil
}

// Open opens (or creates) a SQLiteRegistry at the given path and runs the
// schema migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteRegistry, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("registry: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	r := &SQLiteRegistry{db: db}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// migrate creates the schema if it does not already exist.
func (r *SQLiteRegistry) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
    id           TEXT    PRIMARY KEY,
    file_name    TEXT    NOT NULL,
    ingested_at  INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_documents_ingested
    ON documents (ingested_at);
`
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("registry: migrate: %w", err)
	}
	return nil
}

// Record persists one document entry.
func (r *SQLiteRegistry) Record(ctx context.Context, id, fileName string) error {
	const q = `INSERT INTO documents (id, file_name, ingested_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, id, fileName, time.Now().Unix()); err != nil {
		return fmt.Errorf("registry: record: %w", err)
	}
	return nil
}

// List returns all recorded documents, newest first.
func (r *SQLiteRegistry) List(ctx context.Context) ([]Document, error) {
	const q = `SELECT id, file_name, ingested_at FROM documents ORDER BY ingested_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("registry: list: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var ts int64
		if err := rows.Scan(&d.ID, &d.FileName, &ts); err != nil {
			return nil, fmt.Errorf("registry: scan: %w", err)
		}
		d.IngestedAt = time.Unix(ts, 0)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("registry: rows: %w", err)
	}
	return docs, nil
}

// Ping verifies the database is reachable. Used by readiness probes.
func (r *SQLiteRegistry) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("registry: ping: %w", err)
	}
	return nil
}

// Close closes the underlying database connection pool.
func (r *SQLiteRegistry) Close() error {
	return r.db.Close()
}
