package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ProjectAI00/relay/internal/domain"
)

// UpsertMemory records a (goal, key) fact, overwriting the value if the key
// already exists for the goal.
func (s *Store) UpsertMemory(ctx context.Context, goalID, key, value string, source domain.MemorySource, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (goal_id, key, value, source, created, updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(goal_id, key) DO UPDATE SET
			value = excluded.value,
			source = excluded.source,
			updated = excluded.updated`,
		goalID, key, value, string(source), now, now)
	if err != nil {
		return fmt.Errorf("upsert memory %s/%s: %w", goalID, key, err)
	}
	return nil
}

// ListMemories retrieves all insights recorded for a goal, oldest first.
func (s *Store) ListMemories(ctx context.Context, goalID string) ([]*domain.Memory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT goal_id, key, value, source, created, updated
		FROM memories WHERE goal_id = ? ORDER BY created, key`, goalID)
	if err != nil {
		return nil, fmt.Errorf("list memories of goal %s: %w", goalID, err)
	}
	defer func() { _ = rows.Close() }()

	var memories []*domain.Memory
	for rows.Next() {
		var m domain.Memory
		var source string
		if err := rows.Scan(&m.GoalID, &m.Key, &m.Value, &source, &m.Created, &m.Updated); err != nil {
			return nil, err
		}
		m.Source = domain.MemorySource(source)
		memories = append(memories, &m)
	}
	return memories, rows.Err()
}
