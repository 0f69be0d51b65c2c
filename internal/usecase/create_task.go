package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ProjectAI00/relay/internal/domain"
)

// CreateTaskInput contains the parameters for creating a task.
// Fields are ordered to minimize memory padding.
type CreateTaskInput struct {
	Execution   domain.ExecutionContext
	Title       string
	Description string
	GoalID      string // Optional owning goal
	Priority    string // Empty = medium
	TimeFrame   string // Empty = no due date
}

// CreateTask is the use case for creating a task.
type CreateTask struct {
	tasks  domain.TaskRepository
	goals  domain.GoalRepository
	clock  domain.Clock
	logger domain.Logger
}

// NewCreateTask creates a new CreateTask use case.
func NewCreateTask(
	tasks domain.TaskRepository,
	goals domain.GoalRepository,
	clock domain.Clock,
	logger domain.Logger,
) *CreateTask {
	return &CreateTask{
		tasks:  tasks,
		goals:  goals,
		clock:  clock,
		logger: logger,
	}
}

// Execute validates and persists a new todo task.
func (uc *CreateTask) Execute(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	if in.Priority != "" && !domain.Priority(in.Priority).IsValid() {
		return nil, fmt.Errorf("invalid priority %q", in.Priority)
	}
	if in.TimeFrame != "" && !domain.TimeFrame(in.TimeFrame).IsValid() {
		return nil, fmt.Errorf("invalid time frame %q", in.TimeFrame)
	}
	if in.GoalID != "" {
		goal, err := uc.goals.GetGoal(ctx, in.GoalID)
		if err != nil {
			return nil, fmt.Errorf("load goal: %w", err)
		}
		if goal == nil {
			return nil, fmt.Errorf("goal %s: %w", in.GoalID, domain.ErrGoalNotFound)
		}
	}

	now := uc.clock.Now()
	priority := domain.PriorityMedium
	if in.Priority != "" {
		priority = domain.Priority(in.Priority)
	}
	tf := domain.TimeFrame(in.TimeFrame)

	task := &domain.Task{
		ID:          uuid.NewString(),
		GoalID:      in.GoalID,
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.StatusTodo,
		Priority:    priority,
		TimeFrame:   tf,
		DueDate:     tf.DueDate(now),
		Execution:   in.Execution,
		Created:     now,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := uc.tasks.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	uc.logger.Info("", "task", fmt.Sprintf("created task %s: %s", task.ID, task.Title))
	return task, nil
}
