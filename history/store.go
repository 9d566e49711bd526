// Package history keeps a local record of completed dictations in a
// SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"dictate/config"
)

type Entry struct {
	ID        int64
	Text      string
	AudioS    float64
	Provider  string
	CreatedAt time.Time
}

type Store struct {
	db *sql.DB
}

// DefaultPath returns the database location inside the config
// directory.
func DefaultPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.sqlite"), nil
}

// Open opens (or creates) the history database with WAL enabled.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS dictations (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			text      TEXT NOT NULL,
			audioS    REAL NOT NULL,
			provider  TEXT NOT NULL,
			createdAt REAL NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Add records one completed dictation.
func (s *Store) Add(text string, audioSeconds float64, provider string) error {
	_, err := s.db.Exec(`
		INSERT INTO dictations (text, audioS, provider, createdAt)
		VALUES (?, ?, ?, ?)
	`, text, audioSeconds, provider, float64(time.Now().UnixNano())/1e9)
	if err != nil {
		return fmt.Errorf("insert dictation: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, text, audioS, provider, createdAt
		FROM dictations
		ORDER BY createdAt DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query dictations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt float64
		if err := rows.Scan(&e.ID, &e.Text, &e.AudioS, &e.Provider, &createdAt); err != nil {
			return nil, fmt.Errorf("scan dictation: %w", err)
		}
		e.CreatedAt = timeFromUnix(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Totals reports the number of dictations and the summed audio length.
func (s *Store) Totals() (count int64, audioSeconds float64, err error) {
	row := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(audioS), 0) FROM dictations`)
	if err := row.Scan(&count, &audioSeconds); err != nil {
		return 0, 0, fmt.Errorf("scan totals: %w", err)
	}
	return count, audioSeconds, nil
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
