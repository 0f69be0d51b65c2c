// Package domain contains core business entities and interfaces.
package domain

import (
	"strings"
	"time"
)

// TimeFrame expresses when a task is expected to land. It maps
// deterministically to a due date relative to the creation time.
type TimeFrame string

const (
	TimeFrameToday     TimeFrame = "today"
	TimeFrameTomorrow  TimeFrame = "tomorrow"
	TimeFrameThisWeek  TimeFrame = "this_week"
	TimeFrameNextWeek  TimeFrame = "next_week"
	TimeFrameThisMonth TimeFrame = "this_month"
)

// DueDate returns the due date for the time frame relative to now.
// Unknown or empty time frames yield the zero time (no due date).
func (tf TimeFrame) DueDate(now time.Time) time.Time {
	day := now.Truncate(24 * time.Hour)
	switch tf {
	case TimeFrameToday:
		return day.AddDate(0, 0, 1).Add(-time.Second)
	case TimeFrameTomorrow:
		return day.AddDate(0, 0, 2).Add(-time.Second)
	case TimeFrameThisWeek:
		// End of the ISO week (Sunday)
		offset := 7 - int(now.Weekday())
		if now.Weekday() == time.Sunday {
			offset = 0
		}
		return day.AddDate(0, 0, offset+1).Add(-time.Second)
	case TimeFrameNextWeek:
		offset := 7 - int(now.Weekday())
		if now.Weekday() == time.Sunday {
			offset = 0
		}
		return day.AddDate(0, 0, offset+8).Add(-time.Second)
	case TimeFrameThisMonth:
		firstOfNext := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
		return firstOfNext.Add(-time.Second)
	default:
		return time.Time{}
	}
}

// IsValid returns true if the time frame is a known value.
func (tf TimeFrame) IsValid() bool {
	switch tf {
	case TimeFrameToday, TimeFrameTomorrow, TimeFrameThisWeek, TimeFrameNextWeek, TimeFrameThisMonth:
		return true
	default:
		return false
	}
}

// ExecutionContext carries optional hints handed to the worker running a task.
type ExecutionContext struct {
	Workspace          string   `json:"workspace,omitempty"`          // Working directory for the task
	RelevantFiles      []string `json:"relevantFiles,omitempty"`      // Files likely touched by the task
	RequiredTools      []string `json:"requiredTools,omitempty"`      // Tool names the worker must have
	AcceptanceCriteria []string `json:"acceptanceCriteria,omitempty"` // Conditions for calling the task done
}

// Task represents a persisted unit of planned work. A task optionally
// belongs to exactly one goal.
// Fields are ordered to minimize memory padding.
type Task struct {
	Created     time.Time        `json:"created"`
	DueDate     time.Time        `json:"dueDate,omitempty"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"` // Set only on completion
	Execution   ExecutionContext `json:"execution,omitempty"`
	ID          string           `json:"id"`
	GoalID      string           `json:"goalId,omitempty"` // Empty = standalone task
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Summary     string           `json:"summary,omitempty"` // Set only on completion
	Status      Status           `json:"status"`
	Priority    Priority         `json:"priority"`
	TimeFrame   TimeFrame        `json:"timeFrame,omitempty"`
}

// Validate checks required fields.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if t.Status != "" && !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// BelongsToGoal returns true if the task is attached to a goal.
func (t *Task) BelongsToGoal() bool {
	return t.GoalID != ""
}

// Goal groups tasks into a durable objective with cross-run memory.
// Fields are ordered to minimize memory padding.
type Goal struct {
	Created       time.Time  `json:"created"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Workspace     string     `json:"workspace,omitempty"` // Optional workspace path
	Context       string     `json:"context,omitempty"`   // Free-text background
	Status        Status     `json:"status"`
	Priority      Priority   `json:"priority"`
	RelevantFiles []string   `json:"relevantFiles,omitempty"`
}

// Validate checks required fields.
func (g *Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.Status != "" && !g.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}
