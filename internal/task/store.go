package task

import (
	"database/sql"
	"fmt"
	"time"
)

// Store persists task rows.
type Store struct {
	db *sql.DB
}

// NewStore creates a task store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Add inserts a new task with status READY.
func (s *Store) Add(t *Task) error {
	now := time.Now()
	result, err := s.db.Exec(`
		INSERT INTO tasks (user, mode, status, error_msg, created_at, updated_at)
		VALUES (?, ?, ?, '', ?, ?)`,
		t.User, t.Mode, StatusReady, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	t.ID = id
	t.Status = StatusReady
	t.ErrorMsg = ""
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

// Get retrieves a task by ID.
// Returns ErrNotFound if the task does not exist.
func (s *Store) Get(id int64) (*Task, error) {
	t := &Task{}
	err := s.db.QueryRow(`
		SELECT id, user, mode, status, error_msg, created_at, updated_at
		FROM tasks WHERE id = ?`, id,
	).Scan(&t.ID, &t.User, &t.Mode, &t.Status, &t.ErrorMsg, &t.CreatedAt, &t.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// ListByStatus returns all tasks with the given status, oldest first.
func (s *Store) ListByStatus(status Status) ([]*Task, error) {
	rows, err := s.db.Query(`
		SELECT id, user, mode, status, error_msg, created_at, updated_at
		FROM tasks WHERE status = ? ORDER BY id`, status,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Task
	for rows.Next() {
		t := &Task{}
		if err := rows.Scan(&t.ID, &t.User, &t.Mode, &t.Status, &t.ErrorMsg, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return results, nil
}

// Transition changes a task's status with validation.
func (s *Store) Transition(t *Task, to Status) error {
	return s.transition(t, to, "")
}

// Fail moves a task to ERROR with a non-empty message.
func (s *Store) Fail(t *Task, message string) error {
	if message == "" {
		message = "unknown error"
	}
	return s.transition(t, StatusError, message)
}

func (s *Store) transition(t *Task, to Status, errorMsg string) error {
	if !t.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, to)
	}

	now := time.Now()
	result, err := s.db.Exec(`
		UPDATE tasks SET status = ?, error_msg = ?, updated_at = ?
		WHERE id = ?`,
		to, errorMsg, now, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transition task %d: %w", t.ID, ErrNotFound)
	}

	t.Status = to
	t.ErrorMsg = errorMsg
	t.UpdatedAt = now
	return nil
}

// ResultStore persists rendered results.
type ResultStore struct {
	db *sql.DB
}

// NewResultStore creates a result store.
func NewResultStore(db *sql.DB) *ResultStore {
	return &ResultStore{db: db}
}

// Add inserts the result row for a task. Exactly one row may exist per
// task; a second insert fails on the primary key.
func (s *ResultStore) Add(taskID int64, image []byte, createdOn time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO results (id, result, created_on)
		VALUES (?, ?, ?)`,
		taskID, image, createdOn,
	)
	if err != nil {
		return fmt.Errorf("insert result for task %d: %w", taskID, err)
	}
	return nil
}

// Get retrieves the result for a task.
// Returns ErrNotFound if no result exists.
func (s *ResultStore) Get(taskID int64) (*Result, error) {
	r := &Result{}
	err := s.db.QueryRow(`
		SELECT id, result, created_on FROM results WHERE id = ?`, taskID,
	).Scan(&r.TaskID, &r.Image, &r.CreatedOn)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get result for task %d: %w", taskID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get result for task %d: %w", taskID, err)
	}
	return r, nil
}
