// Package plan extracts structured drafts from a backend's plan-mode
// output. Extraction is advisory: malformed blocks yield errors and empty
// results, never a failure of the turn itself.
package plan

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ProjectAI00/relay/internal/domain"
)

var fenceRe = regexp.MustCompile("(?s)```([a-z-]+)[ \t]*\n(.*?)```")

// Extraction is the outcome of scanning one reply. Tasks holds drafts from
// standalone ```tasks blocks; GoalTasks holds drafts belonging to a ```goal
// block's plan.
// Fields are ordered to minimize memory padding.
type Extraction struct {
	Goal      *domain.GoalDraft
	Tasks     []domain.TaskDraft
	GoalTasks []domain.TaskDraft
	Errors    []error
}

// HasGoalPlan reports whether the extraction carries a complete goal plan:
// a valid goal plus at least one valid task. Incomplete plans are not
// persisted.
func (e *Extraction) HasGoalPlan() bool {
	return e.Goal != nil && len(e.GoalTasks) > 0
}

// Extract scans reply text for fenced plan blocks. A ```tasks block holds
// a JSON array of task drafts; a ```goal block plus a ```goal-tasks block
// describe a new goal with its tasks. Per-item validation failures are
// collected, valid items survive.
func Extract(text string) Extraction {
	var ex Extraction

	for _, m := range fenceRe.FindAllStringSubmatch(text, -1) {
		lang, body := m[1], m[2]
		switch lang {
		case "tasks", "goal-tasks":
			tasks, errs := parseTasks(body)
			ex.Errors = append(ex.Errors, errs...)
			if lang == "tasks" {
				ex.Tasks = append(ex.Tasks, tasks...)
			} else {
				ex.GoalTasks = append(ex.GoalTasks, tasks...)
			}
		case "goal":
			goal, err := parseGoal(body)
			if err != nil {
				ex.Errors = append(ex.Errors, err)
				continue
			}
			ex.Goal = goal
		}
	}

	return ex
}

func parseTasks(body string) ([]domain.TaskDraft, []error) {
	var drafts []domain.TaskDraft
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &drafts); err != nil {
		return nil, []error{fmt.Errorf("parse tasks block: %w", err)}
	}

	var valid []domain.TaskDraft
	var errs []error
	for i := range drafts {
		d := drafts[i]
		if err := d.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("tasks[%d]: %w", i, err))
			continue
		}
		valid = append(valid, d)
	}
	return valid, errs
}

func parseGoal(body string) (*domain.GoalDraft, error) {
	var draft domain.GoalDraft
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &draft); err != nil {
		return nil, fmt.Errorf("parse goal block: %w", err)
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return &draft, nil
}
