// Package store persists translation jobs and glossaries in SQLite. It is
// used by the command-line host only; the pipeline receives glossary entries
// as plain arguments.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; serialising connections avoids SQLITE_BUSY
	// when paragraphs of one document finish concurrently.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		input_name TEXT NOT NULL DEFAULT '',
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		style_preset TEXT NOT NULL DEFAULT '',
		glossary_id TEXT NOT NULL DEFAULT '',
		source_text TEXT NOT NULL,
		translation TEXT NOT NULL DEFAULT '',
		confidence REAL NOT NULL DEFAULT 0,
		retries INTEGER NOT NULL DEFAULT 0,
		total_tokens INTEGER NOT NULL DEFAULT 0,
		result_json TEXT,
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS glossaries (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	-- source_term is stored NFC-normalised so that lookups and uniqueness do
	-- not depend on how the term was typed.
	CREATE TABLE IF NOT EXISTS glossary_entries (
		id TEXT PRIMARY KEY,
		glossary_id TEXT NOT NULL,
		source_term TEXT NOT NULL,
		target_term TEXT NOT NULL,
		case_sensitive BOOLEAN NOT NULL DEFAULT FALSE,
		context TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		UNIQUE(glossary_id, source_term),
		FOREIGN KEY (glossary_id) REFERENCES glossaries(id)
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_created ON jobs(created_at);
	CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
	CREATE INDEX IF NOT EXISTS idx_entries_glossary ON glossary_entries(glossary_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
