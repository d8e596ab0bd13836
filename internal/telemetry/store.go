package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists telemetry events in a local SQLite database for the admin
// events endpoint. Optional; the logger works without it.
type Store struct {
	db *sql.DB
}

// NewStore opens (and migrates) the event database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening telemetry database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		ts TIMESTAMP NOT NULL,
		type TEXT NOT NULL,
		intent TEXT,
		event_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts);
	CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
	`
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating telemetry schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert saves one event. payload is the already-marshaled event JSON.
func (s *Store) Insert(ctx context.Context, e Event, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, ts, type, intent, event_json) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp, e.Type, e.Intent, string(payload),
	)
	if err != nil {
		return fmt.Errorf("storing telemetry event: %w", err)
	}
	return nil
}

// List returns the most recent events, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_json FROM events ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying telemetry events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning telemetry event: %w", err)
		}
		var e Event
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("unmarshaling telemetry event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
