// Package sqlitestore provides a SQLite implementation of domain.Store
// using the pure-Go modernc.org/sqlite driver.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/runoshun/habit/internal/domain"
)

// queryTimeout bounds every statement issued by the store.
const queryTimeout = 5 * time.Second

// Store implements domain.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

// Ensure Store implements domain.Store.
var _ domain.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path with WAL journaling,
// a busy timeout and foreign keys enabled.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)", path)
	return open(ctx, dsn)
}

// NewMemory creates a private in-memory store, used by tests.
func NewMemory(ctx context.Context) (*Store, error) {
	return open(ctx, ":memory:")
}

func open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection: keeps :memory: databases alive and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize ensures the schema exists and marks the database initialized.
func (s *Store) Initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err := s.initSchema(ctx); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO meta (key, value) VALUES ('initialized', 1)`); err != nil {
		return fmt.Errorf("mark initialized: %w", err)
	}
	return nil
}

// IsInitialized reports whether Initialize has run on this database.
func (s *Store) IsInitialized() bool {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var initialized bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM meta WHERE key = 'initialized')`).Scan(&initialized)
	return err == nil && initialized
}

const taskColumns = `id, title, description, priority, daily_target_value, accumulated_value,
	start_date, end_date, last_processed_date, enabled, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t                     domain.Task
		priority              string
		start, end, processed string
		created, updated      string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &priority, &t.DailyTargetValue, &t.AccumulatedValue,
		&start, &end, &processed, &t.Enabled, &created, &updated); err != nil {
		return nil, err
	}
	t.Priority = domain.Priority(priority)

	var err error
	if t.StartDate, err = domain.ParseDate(start); err != nil {
		return nil, fmt.Errorf("task #%d start_date: %w", t.ID, err)
	}
	if t.EndDate, err = domain.ParseDate(end); err != nil {
		return nil, fmt.Errorf("task #%d end_date: %w", t.ID, err)
	}
	if t.LastProcessedDate, err = domain.ParseDate(processed); err != nil {
		return nil, fmt.Errorf("task #%d last_processed_date: %w", t.ID, err)
	}
	if t.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("task #%d created_at: %w", t.ID, err)
	}
	if t.Updated, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("task #%d updated_at: %w", t.ID, err)
	}
	return &t, nil
}

// Get retrieves a task by ID.
func (s *Store) Get(id int) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return task, nil
}

// List retrieves tasks matching the filter, ordered by ID.
func (s *Store) List(filter domain.TaskFilter) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	var args []any
	if filter.EnabledOnly {
		query += ` AND enabled = 1`
	}
	if filter.Priority != "" {
		query += ` AND priority = ?`
		args = append(args, string(filter.Priority))
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Save creates or updates a task. NextID is moved past the saved ID.
func (s *Store) Save(task *domain.Task) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			priority = excluded.priority,
			daily_target_value = excluded.daily_target_value,
			accumulated_value = excluded.accumulated_value,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			last_processed_date = excluded.last_processed_date,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`,
		task.ID, task.Title, task.Description, string(task.Priority), task.DailyTargetValue, task.AccumulatedValue,
		task.StartDate.String(), task.EndDate.String(), task.LastProcessedDate.String(), task.Enabled,
		task.Created.UTC().Format(time.RFC3339Nano), task.Updated.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE meta SET value = ? WHERE key = 'next_task_id' AND value <= ?`,
		task.ID+1, task.ID,
	); err != nil {
		return fmt.Errorf("advance next task id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Delete removes a task; its completions are removed by ON DELETE CASCADE.
func (s *Store) Delete(id int) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// NextID reserves and returns the next task ID.
func (s *Store) NextID() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int
	if err := tx.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'next_task_id'`).Scan(&id); err != nil {
		return 0, fmt.Errorf("read next task id: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE meta SET value = ? WHERE key = 'next_task_id'`, id+1); err != nil {
		return 0, fmt.Errorf("advance next task id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return id, nil
}

// HasCompletion reports whether the task has a record for date.
func (s *Store) HasCompletion(taskID int, date domain.Date) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM completions WHERE task_id = ? AND date = ?)`,
		taskID, date.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query completion: %w", err)
	}
	return exists, nil
}

// ListCompletions returns the task's records, most recent date first.
func (s *Store) ListCompletions(taskID int) ([]domain.CompletionRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, date, completed_value, recorded_at
		FROM completions
		WHERE task_id = ?
		ORDER BY date DESC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	var records []domain.CompletionRecord
	for rows.Next() {
		var (
			r              domain.CompletionRecord
			date, recorded string
		)
		if err := rows.Scan(&r.ID, &r.TaskID, &date, &r.CompletedValue, &recorded); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		if r.Date, err = domain.ParseDate(date); err != nil {
			return nil, fmt.Errorf("completion %s date: %w", r.ID, err)
		}
		if r.Timestamp, err = time.Parse(time.RFC3339Nano, recorded); err != nil {
			return nil, fmt.Errorf("completion %s recorded_at: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// AddCompletion stores a record. The UNIQUE (task_id, date) constraint
// rejects duplicates with domain.ErrAlreadyCompleted.
func (s *Store) AddCompletion(record domain.CompletionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO completions (id, task_id, date, completed_value, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`, record.ID, record.TaskID, record.Date.String(), record.CompletedValue, record.Timestamp.UTC().Format(time.RFC3339Nano))
	if err == nil {
		return nil
	}

	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: task #%d on %s", domain.ErrAlreadyCompleted, record.TaskID, record.Date)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return domain.ErrTaskNotFound
		}
	}
	return fmt.Errorf("insert completion: %w", err)
}
