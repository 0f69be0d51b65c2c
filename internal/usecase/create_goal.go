package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ProjectAI00/relay/internal/domain"
)

// CreateGoalInput contains the parameters for creating a goal.
// Fields are ordered to minimize memory padding.
type CreateGoalInput struct {
	Name          string
	Description   string
	Priority      string // Empty = medium
	Workspace     string
	Context       string
	RelevantFiles []string
}

// CreateGoal is the use case for creating a goal.
type CreateGoal struct {
	goals  domain.GoalRepository
	clock  domain.Clock
	logger domain.Logger
}

// NewCreateGoal creates a new CreateGoal use case.
func NewCreateGoal(goals domain.GoalRepository, clock domain.Clock, logger domain.Logger) *CreateGoal {
	return &CreateGoal{goals: goals, clock: clock, logger: logger}
}

// Execute validates and persists a new goal.
func (uc *CreateGoal) Execute(ctx context.Context, in CreateGoalInput) (*domain.Goal, error) {
	if in.Priority != "" && !domain.Priority(in.Priority).IsValid() {
		return nil, fmt.Errorf("invalid priority %q", in.Priority)
	}

	priority := domain.PriorityMedium
	if in.Priority != "" {
		priority = domain.Priority(in.Priority)
	}
	goal := &domain.Goal{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Description:   in.Description,
		Status:        domain.StatusInProgress,
		Priority:      priority,
		Workspace:     in.Workspace,
		Context:       in.Context,
		RelevantFiles: in.RelevantFiles,
		Created:       uc.clock.Now(),
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	if err := uc.goals.SaveGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("save goal: %w", err)
	}

	uc.logger.Info("", "goal", fmt.Sprintf("created goal %s: %s", goal.ID, goal.Name))
	return goal, nil
}
