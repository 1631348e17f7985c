// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps an optional SQLite audit trail of match
// decisions and fetched work metadata, with a YAML summary export.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibmatch/pkg/types"
)

// Store manages the audit SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the audit database at path, creating the
// schema if it does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS works (
			id TEXT PRIMARY KEY,
			title TEXT,
			publication_year INTEGER,
			authors TEXT,
			raw TEXT,
			fetched_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			bib_file TEXT NOT NULL,
			citation_key TEXT NOT NULL,
			work_id TEXT,
			score REAL,
			outcome TEXT NOT NULL,
			decided_at TEXT,
			PRIMARY KEY (bib_file, citation_key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_work_id ON matches(work_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordDecision upserts the decision for one citation of one
// bibliography file. Re-running a file overwrites its previous rows.
func (s *Store) RecordDecision(ctx context.Context, bibFile, citationKey string, d types.Decision) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO matches (bib_file, citation_key, work_id, score, outcome, decided_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(bib_file, citation_key) DO UPDATE SET
			work_id = excluded.work_id,
			score = excluded.score,
			outcome = excluded.outcome,
			decided_at = excluded.decided_at`,
		bibFile, citationKey, d.WorkID, d.Score, d.Outcome.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording decision for %s: %w", citationKey, err)
	}
	return nil
}

// RecordWork upserts one fetched work record. The raw JSON is kept
// alongside the decoded summary columns.
func (s *Store) RecordWork(ctx context.Context, cand types.Candidate, raw json.RawMessage) error {
	authors, err := json.Marshal(cand.Authors)
	if err != nil {
		return fmt.Errorf("encoding authors: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO works (id, title, publication_year, authors, raw, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			publication_year = excluded.publication_year,
			authors = excluded.authors,
			raw = excluded.raw,
			fetched_at = excluded.fetched_at`,
		cand.ShortID(), cand.Title, cand.PublicationYear, string(authors), string(raw),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording work %s: %w", cand.ShortID(), err)
	}
	return nil
}

// MatchRecord is one row of the matches table.
type MatchRecord struct {
	BibFile     string  `yaml:"bib_file"`
	CitationKey string  `yaml:"citation_key"`
	WorkID      string  `yaml:"work_id,omitempty"`
	Score       float64 `yaml:"score"`
	Outcome     string  `yaml:"outcome"`
	DecidedAt   string  `yaml:"decided_at"`
}

// Summary aggregates the audit trail for the YAML export.
type Summary struct {
	Works   int           `yaml:"works"`
	Matches []MatchRecord `yaml:"matches"`
}

// Matches returns all recorded decisions ordered by file and key.
func (s *Store) Matches(ctx context.Context) ([]MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT bib_file, citation_key, COALESCE(work_id, ''), COALESCE(score, 0), outcome, COALESCE(decided_at, '')
		 FROM matches ORDER BY bib_file, citation_key`)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var records []MatchRecord
	for rows.Next() {
		var r MatchRecord
		if err := rows.Scan(&r.BibFile, &r.CitationKey, &r.WorkID, &r.Score, &r.Outcome, &r.DecidedAt); err != nil {
			return nil, fmt.Errorf("scanning match row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ExportYAML writes a summary of the audit trail next to the database.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	matches, err := s.Matches(ctx)
	if err != nil {
		return err
	}
	var works int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM works`).Scan(&works); err != nil {
		return fmt.Errorf("counting works: %w", err)
	}

	data, err := yaml.Marshal(Summary{Works: works, Matches: matches})
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
