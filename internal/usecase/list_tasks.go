package usecase

import (
	"context"
	"fmt"

	"github.com/ProjectAI00/relay/internal/domain"
)

// ListTasksInput contains the filter for listing tasks.
type ListTasksInput struct {
	GoalID  string
	Status  string
	Pending bool
}

// ListTasks is the use case for listing tasks.
type ListTasks struct {
	tasks domain.TaskRepository
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(tasks domain.TaskRepository) *ListTasks {
	return &ListTasks{tasks: tasks}
}

// Execute returns tasks matching the filter, oldest first.
func (uc *ListTasks) Execute(ctx context.Context, in ListTasksInput) ([]*domain.Task, error) {
	if in.Status != "" && !domain.Status(in.Status).IsValid() {
		return nil, fmt.Errorf("status %q: %w", in.Status, domain.ErrInvalidStatus)
	}
	return uc.tasks.ListTasks(ctx, domain.TaskFilter{
		GoalID:  in.GoalID,
		Status:  domain.Status(in.Status),
		Pending: in.Pending,
	})
}

// DeleteTask is the use case for removing a task.
type DeleteTask struct {
	tasks  domain.TaskRepository
	logger domain.Logger
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(tasks domain.TaskRepository, logger domain.Logger) *DeleteTask {
	return &DeleteTask{tasks: tasks, logger: logger}
}

// Execute removes the task.
func (uc *DeleteTask) Execute(ctx context.Context, taskID string) error {
	task, err := uc.tasks.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("load task: %w", err)
	}
	if task == nil {
		return fmt.Errorf("task %s: %w", taskID, domain.ErrTaskNotFound)
	}
	if err := uc.tasks.DeleteTask(ctx, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	uc.logger.Info("", "task", fmt.Sprintf("deleted task %s", taskID))
	return nil
}
