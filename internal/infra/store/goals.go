package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ProjectAI00/relay/internal/domain"
)

// GetGoal retrieves a goal by ID. Returns nil if not found.
func (s *Store) GetGoal(ctx context.Context, id string) (*domain.Goal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, workspace, context, status, priority, relevant_files, created, completed_at
		FROM goals WHERE id = ?`, id)
	goal, err := scanGoal(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return goal, err
}

// ListGoals retrieves all goals ordered by creation time.
func (s *Store) ListGoals(ctx context.Context) ([]*domain.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, workspace, context, status, priority, relevant_files, created, completed_at
		FROM goals ORDER BY created`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []*domain.Goal
	for rows.Next() {
		goal, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

// SaveGoal creates or updates a goal.
func (s *Store) SaveGoal(ctx context.Context, goal *domain.Goal) error {
	files, err := json.Marshal(goal.RelevantFiles)
	if err != nil {
		return fmt.Errorf("marshal relevant files: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO goals (id, name, description, workspace, context, status, priority, relevant_files, created, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			workspace = excluded.workspace,
			context = excluded.context,
			status = excluded.status,
			priority = excluded.priority,
			relevant_files = excluded.relevant_files,
			completed_at = excluded.completed_at`,
		goal.ID, goal.Name, goal.Description, goal.Workspace, goal.Context,
		string(goal.Status), string(goal.Priority), string(files), goal.Created, nullTime(goal.CompletedAt))
	if err != nil {
		return fmt.Errorf("save goal %s: %w", goal.ID, err)
	}
	return nil
}

// DeleteGoal removes a goal and detaches its tasks.
func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE tasks SET goal_id = '' WHERE goal_id = ?`, id); err != nil {
		return fmt.Errorf("detach tasks of goal %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE goal_id = ?`, id); err != nil {
		return fmt.Errorf("delete memories of goal %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	return tx.Commit()
}

func scanGoal(scan func(dest ...any) error) (*domain.Goal, error) {
	var g domain.Goal
	var status, priority, files string
	var completedAt sql.NullTime
	if err := scan(&g.ID, &g.Name, &g.Description, &g.Workspace, &g.Context,
		&status, &priority, &files, &g.Created, &completedAt); err != nil {
		return nil, err
	}
	g.Status = domain.Status(status)
	g.Priority = domain.Priority(priority)
	if completedAt.Valid {
		t := completedAt.Time
		g.CompletedAt = &t
	}
	if err := json.Unmarshal([]byte(files), &g.RelevantFiles); err != nil {
		return nil, fmt.Errorf("unmarshal relevant files of goal %s: %w", g.ID, err)
	}
	return &g, nil
}
