package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectAI00/relay/internal/domain"
	"github.com/ProjectAI00/relay/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestCreateTask(t *testing.T) {
	tasks := testutil.NewMockTaskRepository()
	goals := testutil.NewMockGoalRepository()
	clock := &testutil.MockClock{NowTime: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)}
	uc := NewCreateTask(tasks, goals, clock, &testutil.MockLogger{})

	t.Run("creates todo task with due date", func(t *testing.T) {
		task, err := uc.Execute(context.Background(), CreateTaskInput{
			Title:       "Write docs",
			Description: "Document the adapter protocol",
			Priority:    "high",
			TimeFrame:   "today",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, task.ID)
		assert.Equal(t, domain.StatusTodo, task.Status)
		assert.Equal(t, domain.PriorityHigh, task.Priority)
		assert.False(t, task.DueDate.IsZero())
		assert.NotNil(t, tasks.Tasks[task.ID])
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), CreateTaskInput{Title: "  "})
		assert.ErrorIs(t, err, domain.ErrEmptyTitle)
	})

	t.Run("rejects unknown goal", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), CreateTaskInput{Title: "x", GoalID: "nope"})
		assert.ErrorIs(t, err, domain.ErrGoalNotFound)
	})

	t.Run("rejects bad priority", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), CreateTaskInput{Title: "x", Priority: "asap"})
		assert.Error(t, err)
	})
}

func TestEditTask(t *testing.T) {
	tasks := testutil.NewMockTaskRepository()
	tasks.Tasks["t1"] = &domain.Task{ID: "t1", Title: "Old", Status: domain.StatusTodo, Priority: domain.PriorityLow}
	uc := NewEditTask(tasks, &testutil.MockLogger{})

	t.Run("edits fields", func(t *testing.T) {
		task, err := uc.Execute(context.Background(), EditTaskInput{
			TaskID:   "t1",
			Title:    strPtr("New"),
			Status:   strPtr("in_progress"),
			Priority: strPtr("urgent"),
		})
		require.NoError(t, err)
		assert.Equal(t, "New", task.Title)
		assert.Equal(t, domain.StatusInProgress, task.Status)
		assert.Equal(t, domain.PriorityUrgent, task.Priority)
	})

	t.Run("rejects invalid transition", func(t *testing.T) {
		tasks.Tasks["t2"] = &domain.Task{ID: "t2", Title: "Done", Status: domain.StatusDone}
		_, err := uc.Execute(context.Background(), EditTaskInput{TaskID: "t2", Status: strPtr("todo")})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), EditTaskInput{TaskID: "t1", Status: strPtr("later")})
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), EditTaskInput{TaskID: "missing"})
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})
}

func TestListAndDeleteTasks(t *testing.T) {
	tasks := testutil.NewMockTaskRepository()
	tasks.Tasks["t1"] = &domain.Task{ID: "t1", Title: "A", Status: domain.StatusTodo, GoalID: "g1", Created: time.Unix(1, 0)}
	tasks.Tasks["t2"] = &domain.Task{ID: "t2", Title: "B", Status: domain.StatusDone, GoalID: "g1", Created: time.Unix(2, 0)}
	tasks.Tasks["t3"] = &domain.Task{ID: "t3", Title: "C", Status: domain.StatusOngoing, Created: time.Unix(3, 0)}

	list := NewListTasks(tasks)

	got, err := list.Execute(context.Background(), ListTasksInput{GoalID: "g1"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = list.Execute(context.Background(), ListTasksInput{Pending: true})
	require.NoError(t, err)
	assert.Len(t, got, 2) // todo + ongoing

	_, err = list.Execute(context.Background(), ListTasksInput{Status: "someday"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	del := NewDeleteTask(tasks, &testutil.MockLogger{})
	require.NoError(t, del.Execute(context.Background(), "t3"))
	assert.Nil(t, tasks.Tasks["t3"])
	assert.ErrorIs(t, del.Execute(context.Background(), "t3"), domain.ErrTaskNotFound)
}

func TestGoalLifecycle(t *testing.T) {
	goals := testutil.NewMockGoalRepository()
	tasks := testutil.NewMockTaskRepository()
	tasks.Goals = goals
	mems := testutil.NewMockMemoryRepository()
	clock := &testutil.MockClock{NowTime: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)}

	create := NewCreateGoal(goals, clock, &testutil.MockLogger{})
	goal, err := create.Execute(context.Background(), CreateGoalInput{
		Name:        "Ship v1",
		Description: "First release",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, goal.Status)
	assert.Equal(t, domain.PriorityMedium, goal.Priority)

	_, err = create.Execute(context.Background(), CreateGoalInput{Name: " "})
	assert.ErrorIs(t, err, domain.ErrEmptyName)

	tasks.Tasks["t1"] = &domain.Task{ID: "t1", GoalID: goal.ID, Title: "A", Status: domain.StatusTodo}
	require.NoError(t, mems.UpsertMemory(context.Background(), goal.ID, "k", "v", domain.MemorySourceUser, clock.Now()))

	show := NewShowGoal(goals, tasks, mems)
	out, err := show.Execute(context.Background(), goal.ID)
	require.NoError(t, err)
	assert.Equal(t, goal.ID, out.Goal.ID)
	assert.Len(t, out.Tasks, 1)
	assert.Len(t, out.Insights, 1)

	_, err = show.Execute(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrGoalNotFound)

	listed, err := NewListGoals(goals).Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	del := NewDeleteGoal(goals, &testutil.MockLogger{})
	require.NoError(t, del.Execute(context.Background(), goal.ID))
	assert.ErrorIs(t, del.Execute(context.Background(), goal.ID), domain.ErrGoalNotFound)
}
