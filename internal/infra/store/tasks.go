package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ProjectAI00/relay/internal/domain"
)

const taskColumns = "id, goal_id, title, description, summary, status, priority, time_frame, execution, created, due_date, completed_at"

// GetTask retrieves a task by ID. Returns nil if not found.
func (s *Store) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return task, err
}

// ListTasks retrieves tasks matching the filter, ordered by creation time.
func (s *Store) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	var conds []string
	var args []any
	if filter.GoalID != "" {
		conds = append(conds, "goal_id = ?")
		args = append(args, filter.GoalID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Pending {
		conds = append(conds, "status IN (?, ?, ?)")
		args = append(args, string(domain.StatusTodo), string(domain.StatusInProgress), string(domain.StatusOngoing))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// SaveTask creates or updates a task.
func (s *Store) SaveTask(ctx context.Context, task *domain.Task) error {
	execution, err := json.Marshal(task.Execution)
	if err != nil {
		return fmt.Errorf("marshal execution context: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			goal_id = excluded.goal_id,
			title = excluded.title,
			description = excluded.description,
			summary = excluded.summary,
			status = excluded.status,
			priority = excluded.priority,
			time_frame = excluded.time_frame,
			execution = excluded.execution,
			due_date = excluded.due_date,
			completed_at = excluded.completed_at`,
		task.ID, task.GoalID, task.Title, task.Description, task.Summary,
		string(task.Status), string(task.Priority), string(task.TimeFrame),
		string(execution), task.Created, zeroNullTime(task.DueDate), nullTime(task.CompletedAt))
	if err != nil {
		return fmt.Errorf("save task %s: %w", task.ID, err)
	}
	return nil
}

// DeleteTask removes a task by ID.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

// CompleteTask marks a task done and, inside the same transaction, re-reads
// sibling state and marks the goal done when no pending tasks remain. The
// re-read under the transaction keeps two concurrent completions from both
// seeing the goal as still open.
func (s *Store) CompleteTask(ctx context.Context, taskID, summary string, now time.Time) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("complete task %s: %w", taskID, err)
	}
	defer func() { _ = tx.Rollback() }()

	var goalID string
	err = tx.QueryRowContext(ctx, `SELECT goal_id FROM tasks WHERE id = ?`, taskID).Scan(&goalID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, domain.ErrTaskNotFound
	}
	if err != nil {
		return false, fmt.Errorf("complete task %s: %w", taskID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE tasks SET status = ?, summary = ?, completed_at = ? WHERE id = ?`,
		string(domain.StatusDone), summary, now, taskID); err != nil {
		return false, fmt.Errorf("complete task %s: %w", taskID, err)
	}

	goalCompleted := false
	if goalID != "" {
		var pending int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM tasks WHERE goal_id = ? AND status IN (?, ?, ?)`,
			goalID, string(domain.StatusTodo), string(domain.StatusInProgress), string(domain.StatusOngoing)).Scan(&pending)
		if err != nil {
			return false, fmt.Errorf("count pending tasks of goal %s: %w", goalID, err)
		}
		if pending == 0 {
			res, err := tx.ExecContext(ctx, `
				UPDATE goals SET status = ?, completed_at = ? WHERE id = ? AND status != ?`,
				string(domain.StatusDone), now, goalID, string(domain.StatusDone))
			if err != nil {
				return false, fmt.Errorf("complete goal %s: %w", goalID, err)
			}
			if n, err := res.RowsAffected(); err == nil && n > 0 {
				goalCompleted = true
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("complete task %s: %w", taskID, err)
	}
	return goalCompleted, nil
}

func scanTask(scan func(dest ...any) error) (*domain.Task, error) {
	var t domain.Task
	var status, priority, timeFrame, execution string
	var dueDate, completedAt sql.NullTime
	if err := scan(&t.ID, &t.GoalID, &t.Title, &t.Description, &t.Summary,
		&status, &priority, &timeFrame, &execution, &t.Created, &dueDate, &completedAt); err != nil {
		return nil, err
	}
	t.Status = domain.Status(status)
	t.Priority = domain.Priority(priority)
	t.TimeFrame = domain.TimeFrame(timeFrame)
	if dueDate.Valid {
		t.DueDate = dueDate.Time
	}
	if completedAt.Valid {
		at := completedAt.Time
		t.CompletedAt = &at
	}
	if err := json.Unmarshal([]byte(execution), &t.Execution); err != nil {
		return nil, fmt.Errorf("unmarshal execution context of task %s: %w", t.ID, err)
	}
	return &t, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func zeroNullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
