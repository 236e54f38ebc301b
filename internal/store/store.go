package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store caches OCR text per source document so re-runs skip the expensive
// OCR stage. Pass ":memory:" for an ephemeral cache.
type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS ocr_cache (
		source_id  TEXT PRIMARY KEY,
		ocr_text   TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ocr_cache: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// GetText returns the cached OCR text for sourceID, if any.
func (s *Store) GetText(ctx context.Context, sourceID string) (string, bool, error) {
	var text string
	err := s.db.QueryRowContext(ctx,
		`SELECT ocr_text FROM ocr_cache WHERE source_id = ?`, sourceID).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get ocr text: %w", err)
	}
	return text, true, nil
}

// PutText stores or replaces the OCR text for sourceID.
func (s *Store) PutText(ctx context.Context, sourceID, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ocr_cache (source_id, ocr_text, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(source_id) DO UPDATE SET ocr_text = excluded.ocr_text, created_at = excluded.created_at`,
		sourceID, text, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put ocr text: %w", err)
	}
	return nil
}
