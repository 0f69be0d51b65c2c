package usecase

import (
	"context"
	"fmt"

	"github.com/ProjectAI00/relay/internal/domain"
)

// ShowGoalOutput contains a goal with its tasks and recorded insights.
type ShowGoalOutput struct {
	Goal     *domain.Goal
	Tasks    []*domain.Task
	Insights []*domain.Memory
}

// ShowGoal is the use case for displaying one goal in full.
type ShowGoal struct {
	goals    domain.GoalRepository
	tasks    domain.TaskRepository
	memories domain.MemoryRepository
}

// NewShowGoal creates a new ShowGoal use case.
func NewShowGoal(
	goals domain.GoalRepository,
	tasks domain.TaskRepository,
	memories domain.MemoryRepository,
) *ShowGoal {
	return &ShowGoal{goals: goals, tasks: tasks, memories: memories}
}

// Execute loads the goal, its tasks, and its insights.
func (uc *ShowGoal) Execute(ctx context.Context, goalID string) (*ShowGoalOutput, error) {
	goal, err := uc.goals.GetGoal(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("load goal: %w", err)
	}
	if goal == nil {
		return nil, fmt.Errorf("goal %s: %w", goalID, domain.ErrGoalNotFound)
	}

	tasks, err := uc.tasks.ListTasks(ctx, domain.TaskFilter{GoalID: goalID})
	if err != nil {
		return nil, fmt.Errorf("list goal tasks: %w", err)
	}
	insights, err := uc.memories.ListMemories(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}

	return &ShowGoalOutput{Goal: goal, Tasks: tasks, Insights: insights}, nil
}

// ListGoals is the use case for listing all goals.
type ListGoals struct {
	goals domain.GoalRepository
}

// NewListGoals creates a new ListGoals use case.
func NewListGoals(goals domain.GoalRepository) *ListGoals {
	return &ListGoals{goals: goals}
}

// Execute returns all goals, oldest first.
func (uc *ListGoals) Execute(ctx context.Context) ([]*domain.Goal, error) {
	return uc.goals.ListGoals(ctx)
}

// DeleteGoal is the use case for removing a goal. Its tasks are detached,
// not deleted; its insights go with it.
type DeleteGoal struct {
	goals  domain.GoalRepository
	logger domain.Logger
}

// NewDeleteGoal creates a new DeleteGoal use case.
func NewDeleteGoal(goals domain.GoalRepository, logger domain.Logger) *DeleteGoal {
	return &DeleteGoal{goals: goals, logger: logger}
}

// Execute removes the goal.
func (uc *DeleteGoal) Execute(ctx context.Context, goalID string) error {
	goal, err := uc.goals.GetGoal(ctx, goalID)
	if err != nil {
		return fmt.Errorf("load goal: %w", err)
	}
	if goal == nil {
		return fmt.Errorf("goal %s: %w", goalID, domain.ErrGoalNotFound)
	}
	if err := uc.goals.DeleteGoal(ctx, goalID); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	uc.logger.Info("", "goal", fmt.Sprintf("deleted goal %s", goalID))
	return nil
}
