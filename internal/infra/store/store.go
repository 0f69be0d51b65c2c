// Package store persists goals, tasks, insights, and chat transcripts in a
// single sqlite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/ProjectAI00/relay/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS goals (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	workspace      TEXT NOT NULL DEFAULT '',
	context        TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	priority       TEXT NOT NULL DEFAULT 'medium',
	relevant_files TEXT NOT NULL DEFAULT '[]',
	created        TIMESTAMP NOT NULL,
	completed_at   TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
	id           TEXT PRIMARY KEY,
	goal_id      TEXT NOT NULL DEFAULT '',
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	summary      TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	priority     TEXT NOT NULL DEFAULT 'medium',
	time_frame   TEXT NOT NULL DEFAULT '',
	execution    TEXT NOT NULL DEFAULT '{}',
	created      TIMESTAMP NOT NULL,
	due_date     TIMESTAMP,
	completed_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tasks_goal ON tasks(goal_id);

CREATE TABLE IF NOT EXISTS memories (
	goal_id TEXT NOT NULL,
	key     TEXT NOT NULL,
	value   TEXT NOT NULL,
	source  TEXT NOT NULL,
	created TIMESTAMP NOT NULL,
	updated TIMESTAMP NOT NULL,
	PRIMARY KEY (goal_id, key)
);

CREATE TABLE IF NOT EXISTS chats (
	id      TEXT PRIMARY KEY,
	title   TEXT NOT NULL DEFAULT '',
	created TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS sub_chats (
	id         TEXT PRIMARY KEY,
	chat_id    TEXT NOT NULL,
	backend    TEXT NOT NULL,
	session_id TEXT NOT NULL DEFAULT '',
	created    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sub_chats_chat ON sub_chats(chat_id);

CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	sub_chat_id TEXT NOT NULL,
	role        TEXT NOT NULL,
	parts       TEXT NOT NULL DEFAULT '[]',
	created     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_sub_chat ON messages(sub_chat_id, created);
`

// Store is the sqlite-backed implementation of the persistence ports.
type Store struct {
	db *sql.DB
}

var (
	_ domain.StoreInitializer = (*Store)(nil)
	_ domain.GoalRepository   = (*Store)(nil)
	_ domain.TaskRepository   = (*Store)(nil)
	_ domain.MemoryRepository = (*Store)(nil)
	_ domain.ChatRepository   = (*Store)(nil)
)

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Initialize creates the schema if it doesn't exist.
func (s *Store) Initialize() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
