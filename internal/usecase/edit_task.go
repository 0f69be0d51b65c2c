package usecase

import (
	"context"
	"fmt"

	"github.com/ProjectAI00/relay/internal/domain"
)

// EditTaskInput contains the fields to change on a task. Nil pointer
// fields are left untouched.
// Fields are ordered to minimize memory padding.
type EditTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	TaskID      string
}

// EditTask is the use case for editing a task's fields. Status changes
// honor the task lifecycle transitions.
type EditTask struct {
	tasks  domain.TaskRepository
	logger domain.Logger
}

// NewEditTask creates a new EditTask use case.
func NewEditTask(tasks domain.TaskRepository, logger domain.Logger) *EditTask {
	return &EditTask{tasks: tasks, logger: logger}
}

// Execute applies the edits and saves the task.
func (uc *EditTask) Execute(ctx context.Context, in EditTaskInput) (*domain.Task, error) {
	task, err := uc.tasks.GetTask(ctx, in.TaskID)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("task %s: %w", in.TaskID, domain.ErrTaskNotFound)
	}

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Priority != nil {
		p := domain.Priority(*in.Priority)
		if !p.IsValid() {
			return nil, fmt.Errorf("invalid priority %q", *in.Priority)
		}
		task.Priority = p
	}
	if in.Status != nil {
		target := domain.Status(*in.Status)
		if !target.IsValid() {
			return nil, fmt.Errorf("status %q: %w", *in.Status, domain.ErrInvalidStatus)
		}
		if target != task.Status && !task.Status.CanTransitionTo(target) {
			return nil, fmt.Errorf("%s -> %s: %w", task.Status, target, domain.ErrInvalidTransition)
		}
		task.Status = target
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := uc.tasks.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	uc.logger.Info("", "task", fmt.Sprintf("edited task %s", task.ID))
	return task, nil
}
