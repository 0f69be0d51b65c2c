package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/ProjectAI00/relay/internal/domain"
)

// taskFromDraft materializes a validated draft as a new todo task.
func taskFromDraft(d *domain.TaskDraft, goalID string, now time.Time) *domain.Task {
	priority := domain.PriorityMedium
	if d.Priority != "" {
		priority = domain.Priority(d.Priority)
	}
	tf := domain.TimeFrame(d.TimeFrame)
	return &domain.Task{
		ID:          uuid.NewString(),
		GoalID:      goalID,
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.StatusTodo,
		Priority:    priority,
		TimeFrame:   tf,
		DueDate:     tf.DueDate(now),
		Created:     now,
		Execution: domain.ExecutionContext{
			Workspace:          d.Workspace,
			RelevantFiles:      d.RelevantFiles,
			RequiredTools:      d.RequiredTools,
			AcceptanceCriteria: d.AcceptanceCriteria,
		},
	}
}

// goalFromDraft materializes a validated draft as a new in-progress goal.
func goalFromDraft(d *domain.GoalDraft, now time.Time) *domain.Goal {
	priority := domain.PriorityMedium
	if d.Priority != "" {
		priority = domain.Priority(d.Priority)
	}
	return &domain.Goal{
		ID:            uuid.NewString(),
		Name:          d.Name,
		Description:   d.Description,
		Status:        domain.StatusInProgress,
		Priority:      priority,
		Workspace:     d.Workspace,
		Context:       d.Context,
		RelevantFiles: d.RelevantFiles,
		Created:       now,
	}
}
