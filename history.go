package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists call history and chat transcript lines in a local SQLite
// database. Both tables are append-only; history rows are keyed by session
// id, so replaying a record for an already stored session is a no-op.
type Store struct {
	db *sql.DB
}

var (
	_ HistoryAppender    = (*Store)(nil)
	_ TranscriptAppender = (*Store)(nil)
)

// OpenStore opens (creating if needed) the database under dataDir.
func OpenStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dataDir, "foundcall.db"))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS call_history (
  session_id   TEXT PRIMARY KEY,
  peer_id      TEXT NOT NULL,
  peer_name    TEXT NOT NULL,
  role         TEXT NOT NULL,
  outcome      TEXT NOT NULL,
  duration_sec INTEGER NOT NULL,
  occurred_at  TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_call_history_peer ON call_history(peer_id, occurred_at);`,
		`CREATE TABLE IF NOT EXISTS chat_transcript (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  peer_id    TEXT NOT NULL,
  body       TEXT NOT NULL,
  created_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_transcript_peer ON chat_transcript(peer_id, created_at);`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// AppendCallRecord inserts one history row. The session-id primary key makes
// a duplicate insert a no-op.
func (s *Store) AppendCallRecord(ctx context.Context, rec CallRecord) error {
	const stmt = `
INSERT OR IGNORE INTO call_history (session_id, peer_id, peer_name, role, outcome, duration_sec, occurred_at)
VALUES (?, ?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		rec.SessionID,
		rec.PeerID,
		rec.PeerName,
		string(rec.Role),
		string(rec.Outcome),
		int64(rec.Duration/time.Second),
		rec.OccurredAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert call record: %w", err)
	}
	return nil
}

// AppendTranscriptLine appends one line to the conversation with peerID.
func (s *Store) AppendTranscriptLine(ctx context.Context, peerID, body string, at time.Time) error {
	const stmt = `INSERT INTO chat_transcript (peer_id, body, created_at) VALUES (?, ?, ?);`
	if _, err := s.db.ExecContext(ctx, stmt, peerID, body, at.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("insert transcript line: %w", err)
	}
	return nil
}

// HistoryForPeer returns the stored call records for one peer, newest first.
func (s *Store) HistoryForPeer(ctx context.Context, peerID string, limit int) ([]CallRecord, error) {
	const query = `
SELECT session_id, peer_id, peer_name, role, outcome, duration_sec, occurred_at
FROM call_history WHERE peer_id = ? ORDER BY occurred_at DESC LIMIT ?;
`
	return s.queryRecords(ctx, query, peerID, limit)
}

// RecentHistory returns the most recent call records across all peers.
func (s *Store) RecentHistory(ctx context.Context, limit int) ([]CallRecord, error) {
	const query = `
SELECT session_id, peer_id, peer_name, role, outcome, duration_sec, occurred_at
FROM call_history ORDER BY occurred_at DESC LIMIT ?;
`
	return s.queryRecords(ctx, query, limit)
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]CallRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query call history: %w", err)
	}
	defer rows.Close()

	var recs []CallRecord
	for rows.Next() {
		var rec CallRecord
		var role, outcome, occurredAt string
		var durationSec int64
		if err := rows.Scan(&rec.SessionID, &rec.PeerID, &rec.PeerName, &role, &outcome, &durationSec, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan call record: %w", err)
		}
		rec.Role = CallRole(role)
		rec.Outcome = Outcome(outcome)
		rec.Duration = time.Duration(durationSec) * time.Second
		if t, err := time.Parse(time.RFC3339, occurredAt); err == nil {
			rec.OccurredAt = t
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// TranscriptForPeer returns the transcript lines for one peer, oldest first.
func (s *Store) TranscriptForPeer(ctx context.Context, peerID string, limit int) ([]string, error) {
	const query = `
SELECT body FROM chat_transcript WHERE peer_id = ? ORDER BY id LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, query, peerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan transcript line: %w", err)
		}
		lines = append(lines, body)
	}
	return lines, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
