package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/7tiSeven/TRJM/internal"
)

type Glossary struct {
	ID         string
	Name       string
	SourceLang string
	TargetLang string
	CreatedAt  time.Time
}

// Term is a stored glossary entry with its identity.
type Term struct {
	ID         string
	GlossaryID string
	internal.GlossaryEntry
	CreatedAt time.Time
}

func (s *Store) CreateGlossary(ctx context.Context, name, sourceLang, targetLang string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO glossaries (id, name, source_lang, target_lang, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, sourceLang, targetLang, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("create glossary %q: %w", name, err)
	}
	return id, nil
}

func (s *Store) GetGlossary(ctx context.Context, id string) (*Glossary, error) {
	var g Glossary
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, source_lang, target_lang, created_at FROM glossaries WHERE id = ?`, id).
		Scan(&g.ID, &g.Name, &g.SourceLang, &g.TargetLang, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("glossary %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) ListGlossaries(ctx context.Context) ([]Glossary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source_lang, target_lang, created_at FROM glossaries ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Glossary
	for rows.Next() {
		var g Glossary
		if err := rows.Scan(&g.ID, &g.Name, &g.SourceLang, &g.TargetLang, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// DeleteGlossary removes a glossary together with its entries.
func (s *Store) DeleteGlossary(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM glossary_entries WHERE glossary_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM glossaries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("glossary %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

// AddTerm inserts a term or replaces the existing translation of the same
// source term in that glossary.
func (s *Store) AddTerm(ctx context.Context, glossaryID string, e internal.GlossaryEntry) (string, error) {
	source := normalizeText(e.SourceTerm)
	target := normalizeText(e.TargetTerm)
	if source == "" || target == "" {
		return "", fmt.Errorf("glossary term: source and target must not be empty")
	}
	if _, err := s.GetGlossary(ctx, glossaryID); err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO glossary_entries (id, glossary_id, source_term, target_term, case_sensitive, context, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(glossary_id, source_term) DO UPDATE SET
			target_term = excluded.target_term,
			case_sensitive = excluded.case_sensitive,
			context = excluded.context`,
		id, glossaryID, source, target, e.CaseSensitive, e.Context, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("add glossary term: %w", err)
	}

	// On conflict the row keeps its original ID.
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM glossary_entries WHERE glossary_id = ? AND source_term = ?`,
		glossaryID, source).Scan(&id)
	return id, err
}

func (s *Store) Terms(ctx context.Context, glossaryID string) ([]Term, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, glossary_id, source_term, target_term, case_sensitive, context, created_at
		 FROM glossary_entries WHERE glossary_id = ? ORDER BY source_term`, glossaryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Term
	for rows.Next() {
		var t Term
		if err := rows.Scan(&t.ID, &t.GlossaryID, &t.SourceTerm, &t.TargetTerm, &t.CaseSensitive, &t.Context, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Entries returns the glossary in the form the pipeline consumes. An unknown
// glossary is an error so that a mistyped ID is not silently ignored.
func (s *Store) Entries(ctx context.Context, glossaryID string) ([]internal.GlossaryEntry, error) {
	if _, err := s.GetGlossary(ctx, glossaryID); err != nil {
		return nil, err
	}
	terms, err := s.Terms(ctx, glossaryID)
	if err != nil {
		return nil, err
	}
	entries := make([]internal.GlossaryEntry, len(terms))
	for i, t := range terms {
		entries[i] = t.GlossaryEntry
	}
	return entries, nil
}

func (s *Store) DeleteTerm(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM glossary_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("glossary term %s: %w", id, ErrNotFound)
	}
	return nil
}
