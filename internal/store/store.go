// Package store persists downloaded-video metadata and the commentary
// transcript archive in SQLite. The live pipeline never depends on a write
// succeeding; archive failures are logged by callers and dropped.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// VideoRecord is a cached downloaded video.
type VideoRecord struct {
	ID       string
	URL      string
	Title    string
	Duration int
	Path     string
}

// TurnRecord is one archived commentary turn.
type TurnRecord struct {
	SessionID string
	Persona   string
	Emotion   string
	Text      string
	CreatedAt time.Time
}

// Open initializes or connects to the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
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

	s := &Store{db: db, path: path}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS videos (
			id TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			title TEXT NOT NULL,
			duration INTEGER NOT NULL,
			path TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			persona TEXT NOT NULL,
			emotion TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// PutVideo upserts a downloaded-video record.
func (s *Store) PutVideo(ctx context.Context, rec VideoRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO videos (id, url, title, duration, path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			title = excluded.title,
			duration = excluded.duration,
			path = excluded.path`,
		rec.ID, rec.URL, rec.Title, rec.Duration, rec.Path,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("put video %s: %w", rec.ID, err)
	}
	return nil
}

// GetVideo looks up a cached video by ID. Returns (nil, nil) when absent.
func (s *Store) GetVideo(ctx context.Context, id string) (*VideoRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, title, duration, path FROM videos WHERE id = ?`, id)

	var rec VideoRecord
	err := row.Scan(&rec.ID, &rec.URL, &rec.Title, &rec.Duration, &rec.Path)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video %s: %w", id, err)
	}
	return &rec, nil
}

// AppendTurn archives one commentary turn.
func (s *Store) AppendTurn(ctx context.Context, rec TurnRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (session_id, persona, emotion, text, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Persona, rec.Emotion, rec.Text,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// Transcript returns the archived turns for a session, oldest first.
func (s *Store) Transcript(ctx context.Context, sessionID string) ([]TurnRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, persona, emotion, text, created_at
		 FROM turns WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("transcript %s: %w", sessionID, err)
	}
	defer rows.Close()

	var records []TurnRecord
	for rows.Next() {
		var rec TurnRecord
		var createdAt string
		if err := rows.Scan(&rec.SessionID, &rec.Persona, &rec.Emotion, &rec.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
