package sqlitestore

import (
	"context"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id                  INTEGER PRIMARY KEY,
	title               TEXT NOT NULL,
	description         TEXT NOT NULL DEFAULT '',
	priority            TEXT NOT NULL,
	daily_target_value  INTEGER NOT NULL CHECK (daily_target_value >= 1),
	accumulated_value   INTEGER NOT NULL CHECK (accumulated_value >= 0),
	start_date          TEXT NOT NULL,
	end_date            TEXT NOT NULL,
	last_processed_date TEXT NOT NULL,
	enabled             INTEGER NOT NULL DEFAULT 1,
	created_at          TEXT NOT NULL,
	updated_at          TEXT NOT NULL,
	CHECK (end_date >= start_date)
);

CREATE INDEX IF NOT EXISTS idx_tasks_enabled ON tasks(enabled, last_processed_date);

CREATE TABLE IF NOT EXISTS completions (
	id              TEXT PRIMARY KEY,
	task_id         INTEGER NOT NULL,
	date            TEXT NOT NULL,
	completed_value INTEGER NOT NULL,
	recorded_at     TEXT NOT NULL,
	UNIQUE (task_id, date),
	FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);

INSERT OR IGNORE INTO meta (key, value) VALUES ('next_task_id', 1);
`

// initSchema creates all required tables if they don't exist.
func (s *Store) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}
