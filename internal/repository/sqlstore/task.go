package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// If *TaskStore ever stops implementing repository.TaskRepository, the
// compiler fails right here instead of somewhere in server wiring.
var _ repository.TaskRepository = (*TaskStore)(nil)

// TaskStore is the task store: the tasks table.
//
// OWNERSHIP SCOPING:
// Every statement carries "AND user_id = ?". There is no method that reads
// or writes a task by id alone, so one user can never observe or mutate
// another user's rows: the database simply finds nothing.
type TaskStore struct {
	db *DB
}

const taskColumns = `id, user_id, title, description, status, created_at`

// Create inserts task and fills in task.ID and task.CreatedAt.
func (s *TaskStore) Create(ctx context.Context, task *model.Task) error {
	task.CreatedAt = now()

	err := s.db.conn.QueryRowContext(ctx, s.db.q(
		`INSERT INTO tasks (user_id, title, description, status, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`),
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.CreatedAt,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("sqlstore: creating task: %w", err)
	}

	return nil
}

// GetByID retrieves one of the owner's tasks.
// Returns apperror.ErrNotFound if the id doesn't exist OR isn't theirs.
func (s *TaskStore) GetByID(ctx context.Context, userID, id int64) (*model.Task, error) {
	var t model.Task

	err := s.db.conn.QueryRowContext(ctx, s.db.q(
		`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE id = ? AND user_id = ?`),
		id,
		userID,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Task")
		}
		return nil, fmt.Errorf("sqlstore: getting task %d: %w", id, err)
	}

	return &t, nil
}

// ListByUser returns all of the owner's tasks, newest first.
// id breaks ties between tasks created in the same instant.
func (s *TaskStore) ListByUser(ctx context.Context, userID int64) ([]model.Task, error) {
	rows, err := s.db.conn.QueryContext(ctx, s.db.q(
		`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing tasks: %w", err)
	}
	// CRITICAL: sql.Rows holds a pooled connection until closed.
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating tasks: %w", err)
	}

	return tasks, nil
}

// Update applies upd to one of the owner's tasks.
//
// ONE STATEMENT, NOT TWO:
// COALESCE(?, title) keeps the current value when the parameter is NULL (a
// nil field in upd). Existence, ownership and the write are therefore one
// atomic UPDATE; RowsAffected() == 0 means "no such task for this owner".
// There is no window between a SELECT and the UPDATE for another request to
// delete the row.
func (s *TaskStore) Update(ctx context.Context, userID, id int64, upd repository.TaskUpdate) error {
	result, err := s.db.conn.ExecContext(ctx, s.db.q(
		`UPDATE tasks
		 SET title = COALESCE(?, title),
		     description = COALESCE(?, description),
		     status = COALESCE(?, status)
		 WHERE id = ? AND user_id = ?`),
		nullable(upd.Title),
		nullable(upd.Description),
		nullable(upd.Status),
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: updating task %d: %w", id, err)
	}

	return expectOneRow(result, id)
}

// Delete removes one of the owner's tasks.
// Same pattern as Update: RowsAffected detects "not found".
func (s *TaskStore) Delete(ctx context.Context, userID, id int64) error {
	result, err := s.db.conn.ExecContext(ctx, s.db.q(
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`),
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting task %d: %w", id, err)
	}

	return expectOneRow(result, id)
}

func expectOneRow(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking rows affected for task %d: %w", id, err)
	}
	if n == 0 {
		return apperror.NotFound("Task")
	}
	return nil
}

// nullable maps a nil *string to SQL NULL.
func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
