package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ProjectAI00/relay/internal/domain"
)

func TestTaskBrief_FullContext(t *testing.T) {
	t.Parallel()

	goal := &domain.Goal{Name: "Ship search", Description: "Add full-text search", Context: "Index lives in sqlite"}
	task := &domain.Task{
		ID:    "t2",
		Title: "Wire the query endpoint",
		Execution: domain.ExecutionContext{
			Workspace:          "/srv/app",
			RelevantFiles:      []string{"api/search.go"},
			AcceptanceCriteria: []string{"queries return ranked results"},
		},
	}
	siblings := []domain.Task{
		{ID: "t1", Title: "Build the index", Status: domain.StatusDone, Summary: "Index builder done, stored in search.db"},
		{ID: "t2", Title: "Wire the query endpoint", Status: domain.StatusInProgress},
		{ID: "t3", Title: "Add ranking", Status: domain.StatusTodo},
	}
	insights := []domain.Memory{{Key: "index_path", Value: "search.db"}}

	got := TaskBrief(goal, task, siblings, insights)

	assert.Contains(t, got, "## Goal: Ship search")
	assert.Contains(t, got, "Index lives in sqlite")
	assert.Contains(t, got, "## Current task: Wire the query endpoint")
	assert.Contains(t, got, "Workspace: /srv/app")
	assert.Contains(t, got, "- queries return ranked results")
	assert.Contains(t, got, "[x] Build the index")
	assert.Contains(t, got, "Index builder done")
	assert.Contains(t, got, "[ ] Add ranking")
	assert.Contains(t, got, "- index_path = search.db")
	assert.Contains(t, got, "SUMMARY:")
	assert.Contains(t, got, "INSIGHT: key = value")
	// The current task does not list itself as a sibling.
	assert.Equal(t, 1, strings.Count(got, "Wire the query endpoint"))
}

func TestTaskBrief_NoGoal(t *testing.T) {
	t.Parallel()

	task := &domain.Task{ID: "t1", Title: "Standalone chore"}
	got := TaskBrief(nil, task, nil, nil)

	assert.NotContains(t, got, "## Goal:")
	assert.Contains(t, got, "## Current task: Standalone chore")
	assert.Contains(t, got, "SUMMARY:")
}

func TestTaskBrief_LongSummaryTruncated(t *testing.T) {
	t.Parallel()

	task := &domain.Task{ID: "t2", Title: "Next"}
	siblings := []domain.Task{
		{ID: "t1", Title: "Prev", Status: domain.StatusDone, Summary: strings.Repeat("s", 600)},
	}
	got := TaskBrief(nil, task, siblings, nil)
	assert.Contains(t, got, strings.Repeat("s", 400)+"…")
	assert.NotContains(t, got, strings.Repeat("s", 401))
}

func TestGoalBrief_Orchestration(t *testing.T) {
	t.Parallel()

	goal := &domain.Goal{Name: "Migrate storage", Description: "Move to sqlite", RelevantFiles: []string{"store/"}}
	tasks := []domain.Task{
		{ID: "t1", Title: "Schema", Status: domain.StatusDone, Summary: "Tables created", Priority: domain.PriorityHigh},
		{ID: "t2", Title: "Backfill", Status: domain.StatusTodo, Priority: domain.PriorityMedium},
	}

	got := GoalBrief(goal, tasks, nil, 3)

	assert.Contains(t, got, "## Goal: Migrate storage")
	assert.Contains(t, got, "Relevant files: store/")
	assert.Contains(t, got, "[x] [high] Schema")
	assert.Contains(t, got, "[ ] [medium] Backfill")
	assert.Contains(t, got, "Run at most 3 tasks concurrently.")
	assert.Contains(t, got, "relevant files do not overlap")
	assert.Contains(t, got, "SUMMARY block")
}

func TestGoalBrief_ConcurrencyFloor(t *testing.T) {
	t.Parallel()

	goal := &domain.Goal{Name: "G"}
	got := GoalBrief(goal, nil, nil, 0)
	assert.Contains(t, got, "Run at most 1 tasks concurrently.")
}
