// Package sqlite provides a SQLite-backed memory.Store.
//
// Writes run in WAL mode with synchronous=FULL so a successful Append is on
// disk before it returns. Appends are serialized store-wide with a mutex on
// top of a single-connection pool; SQLite only has one writer anyway.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/parchmentco/lore/pkg/memory"
)

// Store implements memory.Store on SQLite via the mattn/go-sqlite3 driver.
type Store struct {
	db *sql.DB

	// appendMu serializes appends so concurrent callers cannot interleave
	// the topic upsert, sequence read, and turn insert.
	appendMu sync.Mutex
}

// NewStore creates a SQLite-backed conversation store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent and sidesteps
	// SQLITE_BUSY between the pool's connections.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS topics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		topic_id INTEGER NOT NULL REFERENCES topics(id),
		seq INTEGER NOT NULL,
		user_text TEXT NOT NULL,
		ai_text TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(topic_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_turns_topic_id ON turns(topic_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Append implements memory.Store. The topic upsert, sequence assignment, and
// turn insert commit in one transaction so a turn is never half-persisted.
func (s *Store) Append(ctx context.Context, topic, userText, aiText string) (memory.Turn, error) {
	if topic == "" {
		return memory.Turn{}, fmt.Errorf("topic name must not be empty")
	}

	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return memory.Turn{}, memory.ErrUnavailable{Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO topics (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, topic,
	); err != nil {
		return memory.Turn{}, memory.ErrUnavailable{Err: err}
	}

	var topicID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM topics WHERE name = ?`, topic,
	).Scan(&topicID); err != nil {
		return memory.Turn{}, memory.ErrUnavailable{Err: err}
	}

	var seq int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq) + 1, 0) FROM turns WHERE topic_id = ?`, topicID,
	).Scan(&seq); err != nil {
		return memory.Turn{}, memory.ErrUnavailable{Err: err}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO turns (topic_id, seq, user_text, ai_text) VALUES (?, ?, ?, ?)`,
		topicID, seq, userText, aiText,
	); err != nil {
		return memory.Turn{}, memory.ErrUnavailable{Err: err}
	}

	if err := tx.Commit(); err != nil {
		return memory.Turn{}, memory.ErrUnavailable{Err: err}
	}

	return memory.Turn{User: userText, AI: aiText, Seq: seq}, nil
}

// History implements memory.Store.
func (s *Store) History(ctx context.Context, topic string) ([]memory.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT turns.seq, turns.user_text, turns.ai_text
		FROM turns
		JOIN topics ON topics.id = turns.topic_id
		WHERE topics.name = ?
		ORDER BY turns.seq`, topic)
	if err != nil {
		return nil, memory.ErrUnavailable{Err: err}
	}
	defer rows.Close()

	return scanTurns(rows)
}

// Topics implements memory.Store.
func (s *Store) Topics(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM topics ORDER BY name`)
	if err != nil {
		return nil, memory.ErrUnavailable{Err: err}
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, memory.ErrUnavailable{Err: err}
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, memory.ErrUnavailable{Err: err}
	}

	return names, nil
}

// Export implements memory.Store.
func (s *Store) Export(ctx context.Context, topic string) (*memory.Topic, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM topics WHERE name = ?`, topic).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, memory.ErrNotFound{Topic: topic}
	}
	if err != nil {
		return nil, memory.ErrUnavailable{Err: err}
	}

	turns, err := s.History(ctx, topic)
	if err != nil {
		return nil, err
	}

	return &memory.Topic{Name: topic, Turns: turns}, nil
}

// Close closes the store and releases any resources.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanTurns(rows *sql.Rows) ([]memory.Turn, error) {
	turns := []memory.Turn{}
	for rows.Next() {
		var turn memory.Turn
		if err := rows.Scan(&turn.Seq, &turn.User, &turn.AI); err != nil {
			return nil, memory.ErrUnavailable{Err: err}
		}
		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, memory.ErrUnavailable{Err: err}
	}

	return turns, nil
}
