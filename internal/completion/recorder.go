package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/ProjectAI00/relay/internal/domain"
)

// Recorder persists a parsed completion: the task's summary and any
// insights attached to its goal.
// Fields are ordered to minimize memory padding.
type Recorder struct {
	tasks    domain.TaskRepository
	memories domain.MemoryRepository
	clock    domain.Clock
}

// NewRecorder creates a Recorder.
func NewRecorder(tasks domain.TaskRepository, memories domain.MemoryRepository, clock domain.Clock) *Recorder {
	return &Recorder{tasks: tasks, memories: memories, clock: clock}
}

// Result describes what a recorded completion changed.
type Result struct {
	Summary       string
	GoalID        string
	Insights      []Insight
	GoalCompleted bool
}

// Record parses the reply text and persists the outcome for the given
// task. Insights are attached to goalID, falling back to the task's own
// goal when the caller did not name one; tasks outside any goal have
// nowhere to keep insights, so they are skipped. The goal-done check
// happens inside the task store's transaction so two concurrent
// completions cannot both conclude the goal is still open.
func (r *Recorder) Record(ctx context.Context, taskID, goalID, reply string) (*Result, error) {
	summary := ParseSummary(reply)
	insights := ExtractInsights(reply)
	now := r.now()

	if goalID == "" {
		task, err := r.tasks.GetTask(ctx, taskID)
		if err != nil {
			return nil, fmt.Errorf("load task %s: %w", taskID, err)
		}
		if task != nil {
			goalID = task.GoalID
		}
	}

	goalCompleted, err := r.tasks.CompleteTask(ctx, taskID, summary, now)
	if err != nil {
		return nil, fmt.Errorf("complete task %s: %w", taskID, err)
	}

	if goalID != "" {
		for _, in := range insights {
			if err := r.memories.UpsertMemory(ctx, goalID, in.Key, in.Value, domain.MemorySourceAgent, now); err != nil {
				return nil, fmt.Errorf("record insight %q: %w", in.Key, err)
			}
		}
	}

	return &Result{
		Summary:       summary,
		GoalID:        goalID,
		Insights:      insights,
		GoalCompleted: goalCompleted,
	}, nil
}

func (r *Recorder) now() time.Time {
	if r.clock != nil {
		return r.clock.Now()
	}
	return time.Now()
}
