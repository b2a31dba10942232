// Package storage provides SQLite-based persistence for the pet change journal.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
//
// The journal is an audit trail only; the live pet state is never loaded from it.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-pet/internal/pet"
)

// sqliteTimeLayout is what CURRENT_TIMESTAMP produces.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database connection for the change journal.
type Store struct {
	db *sql.DB
}

// ChangeEntry is one journaled mutation.
type ChangeEntry struct {
	ID          int64      `json:"id"`
	ChangeID    string     `json:"changeId"`
	Action      pet.Action `json:"action"`
	Hearts      int        `json:"hearts"`
	IsMuted     bool       `json:"isMuted"`
	LastUpdated time.Time  `json:"lastUpdated"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ActionStats aggregates journal entries for one action.
type ActionStats struct {
	Action   pet.Action
	Count    int
	LastSeen time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS changes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			change_id TEXT NOT NULL UNIQUE,
			action TEXT NOT NULL,
			hearts INTEGER NOT NULL,
			is_muted INTEGER NOT NULL DEFAULT 0,
			last_updated TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_changes_action ON changes(action);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveChange appends a change to the journal.
// Returns the row ID of the inserted record.
func (s *Store) SaveChange(c pet.Change) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO changes (change_id, action, hearts, is_muted, last_updated)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID,
		string(c.Action),
		c.State.Hearts,
		c.State.IsMuted,
		c.State.LastUpdated.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save change: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecordChange implements pet.Recorder.
func (s *Store) RecordChange(c pet.Change) error {
	_, err := s.SaveChange(c)
	return err
}

// Ensure Store implements Recorder
var _ pet.Recorder = (*Store)(nil)

// RecentChanges retrieves the most recent N changes, newest first.
func (s *Store) RecentChanges(limit int) ([]ChangeEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, change_id, action, hearts, is_muted, last_updated, created_at
		 FROM changes
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query changes: %w", err)
	}
	defer rows.Close()

	var entries []ChangeEntry
	for rows.Next() {
		e, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// ChangeByID retrieves a journal entry by its change ID.
// Returns nil if there is no such entry.
func (s *Store) ChangeByID(changeID string) (*ChangeEntry, error) {
	row := s.db.QueryRow(
		`SELECT id, change_id, action, hearts, is_muted, last_updated, created_at
		 FROM changes
		 WHERE change_id = ?`,
		changeID,
	)

	e, err := scanChange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Stats returns per-action counts for the whole journal.
func (s *Store) Stats() (map[pet.Action]*ActionStats, error) {
	rows, err := s.db.Query(
		`SELECT action, COUNT(*), MAX(created_at)
		 FROM changes
		 GROUP BY action`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get change stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[pet.Action]*ActionStats)
	for rows.Next() {
		var st ActionStats
		var action string
		var lastSeen any
		if err := rows.Scan(&action, &st.Count, &lastSeen); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.Action = pet.Action(action)
		st.LastSeen = parseTimestamp(lastSeen)
		stats[st.Action] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// ClearChanges deletes the whole journal.
func (s *Store) ClearChanges() error {
	if _, err := s.db.Exec("DELETE FROM changes"); err != nil {
		return fmt.Errorf("storage: cannot clear changes: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChange(r rowScanner) (ChangeEntry, error) {
	var e ChangeEntry
	var action, lastUpdated string
	var createdAt any

	if err := r.Scan(&e.ID, &e.ChangeID, &action, &e.Hearts, &e.IsMuted, &lastUpdated, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("storage: cannot scan row: %w", err)
	}

	e.Action = pet.Action(action)
	if parsed, err := time.Parse(time.RFC3339Nano, lastUpdated); err == nil {
		e.LastUpdated = parsed
	}
	e.CreatedAt = parseTimestamp(createdAt)
	return e, nil
}

// parseTimestamp handles both time.Time and string, depending on how the
// driver hands back DATETIME columns.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(sqliteTimeLayout, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
