package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
)

// MemoryDSN opens a private in-memory ledger.
const MemoryDSN = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	build_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	payload BLOB NOT NULL,
	metadata TEXT
);
CREATE INDEX IF NOT EXISTS idx_build_id ON events(build_id);
CREATE INDEX IF NOT EXISTS idx_timestamp ON events(timestamp);
`

const selectColumns = "SELECT id, build_id, event_type, timestamp, payload, metadata FROM events"

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the ledger at path. Use MemoryDSN for tests.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create history directory").
				WithContext("path", path).
				Build()
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "could not open history database").
			WithContext("path", path).
			Build()
	}
	// One connection keeps an in-memory database shared between statements.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "failed to initialize history schema").
			WithContext("path", path).
			Build()
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Append adds an event to the ledger.
func (s *SQLiteStore) Append(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var metadataJSON []byte
	if event.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryHistory, "failed to marshal event metadata").Build()
		}
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	payload := []byte(event.Payload)
	if payload == nil {
		payload = []byte("{}")
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (build_id, event_type, timestamp, payload, metadata) VALUES (?, ?, ?, ?, ?)",
		event.BuildID, event.Type, ts.UnixMilli(), payload, metadataJSON,
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryHistory, "failed to append event").
			WithContext("event_type", event.Type).
			WithContext("build_id", event.BuildID).
			Build()
	}
	return nil
}

// ByBuildID returns all events of one run.
func (s *SQLiteStore) ByBuildID(ctx context.Context, buildID string) ([]Event, error) {
	return s.query(ctx, selectColumns+" WHERE build_id = ? ORDER BY id", buildID)
}

// Range returns events within [start, end].
func (s *SQLiteStore) Range(ctx context.Context, start, end time.Time) ([]Event, error) {
	return s.query(ctx, selectColumns+" WHERE timestamp >= ? AND timestamp <= ? ORDER BY id",
		start.UnixMilli(), end.UnixMilli())
}

// All returns the full ledger.
func (s *SQLiteStore) All(ctx context.Context) ([]Event, error) {
	return s.query(ctx, selectColumns+" ORDER BY id")
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "failed to query events").Build()
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var (
			e            Event
			ts           int64
			payload      []byte
			metadataJSON []byte
		)
		if err := rows.Scan(&e.ID, &e.BuildID, &e.Type, &ts, &payload, &metadataJSON); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "failed to scan event row").Build()
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		e.Payload = payload
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
				return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "failed to decode event metadata").Build()
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "failed to iterate event rows").Build()
	}
	return events, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
