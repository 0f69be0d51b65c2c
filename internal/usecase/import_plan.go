package usecase

import (
	"context"
	"fmt"

	"github.com/ProjectAI00/relay/internal/domain"
)

// ImportPlanInput contains the parameters for importing a plan file.
type ImportPlanInput struct {
	Content string // YAML file content
	GoalID  string // Attach standalone tasks to this goal (optional)
	DryRun  bool   // Parse and validate without creating anything
}

// ImportPlanOutput contains the result of importing a plan file.
// Fields are ordered to minimize memory padding.
type ImportPlanOutput struct {
	Goal   *domain.Goal   // Created goal, if the file defined one
	Tasks  []*domain.Task // Created tasks (or tasks that would be created in dry-run mode)
	Errors []error        // Per-item validation failures, non-fatal
}

// ImportPlan is the use case for creating a goal and tasks from a YAML
// definition file. Invalid items are skipped and reported; valid items are
// created.
type ImportPlan struct {
	goals  domain.GoalRepository
	tasks  domain.TaskRepository
	clock  domain.Clock
	logger domain.Logger
}

// NewImportPlan creates a new ImportPlan use case.
func NewImportPlan(
	goals domain.GoalRepository,
	tasks domain.TaskRepository,
	clock domain.Clock,
	logger domain.Logger,
) *ImportPlan {
	return &ImportPlan{
		goals:  goals,
		tasks:  tasks,
		clock:  clock,
		logger: logger,
	}
}

// Execute parses the file content and creates the drafted goal and tasks.
// Tasks defined alongside a goal belong to it; otherwise they attach to
// in.GoalID when given.
func (uc *ImportPlan) Execute(ctx context.Context, in ImportPlanInput) (*ImportPlanOutput, error) {
	goalDraft, taskDrafts, itemErrs, err := domain.ParsePlanFile(in.Content)
	if err != nil {
		return nil, err
	}

	out := &ImportPlanOutput{Errors: itemErrs}
	now := uc.clock.Now()

	goalID := in.GoalID
	if goalDraft != nil {
		goal := goalFromDraft(goalDraft, now)
		if !in.DryRun {
			if err := uc.goals.SaveGoal(ctx, goal); err != nil {
				return nil, fmt.Errorf("save goal: %w", err)
			}
			uc.logger.Info("", "goal", fmt.Sprintf("imported goal %s: %s", goal.ID, goal.Name))
		}
		out.Goal = goal
		goalID = goal.ID
	}

	for i := range taskDrafts {
		task := taskFromDraft(&taskDrafts[i], goalID, now)
		if !in.DryRun {
			if err := uc.tasks.SaveTask(ctx, task); err != nil {
				return nil, fmt.Errorf("save task %q: %w", task.Title, err)
			}
		}
		out.Tasks = append(out.Tasks, task)
	}

	if !in.DryRun && len(out.Tasks) > 0 {
		uc.logger.Info("", "task", fmt.Sprintf("imported %d task(s)", len(out.Tasks)))
	}
	return out, nil
}
