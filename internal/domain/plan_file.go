package domain

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// GoalDraft is the parsed form of a goal definition before creation.
// Fields are ordered to minimize memory padding.
type GoalDraft struct {
	Name          string   `yaml:"name" json:"name"`
	Description   string   `yaml:"description" json:"description"`
	Priority      string   `yaml:"priority,omitempty" json:"priority,omitempty"`
	Workspace     string   `yaml:"workspace,omitempty" json:"workspace,omitempty"`
	Context       string   `yaml:"context,omitempty" json:"context,omitempty"`
	RelevantFiles []string `yaml:"relevant_files,omitempty" json:"relevantFiles,omitempty"`
}

// TaskDraft is the parsed form of a task definition before creation.
// Fields are ordered to minimize memory padding.
type TaskDraft struct {
	Title              string   `yaml:"title" json:"title"`
	Description        string   `yaml:"description" json:"description"`
	Priority           string   `yaml:"priority,omitempty" json:"priority,omitempty"`
	TimeFrame          string   `yaml:"time_frame,omitempty" json:"timeFrame,omitempty"`
	Workspace          string   `yaml:"workspace,omitempty" json:"workspace,omitempty"`
	RelevantFiles      []string `yaml:"relevant_files,omitempty" json:"relevantFiles,omitempty"`
	RequiredTools      []string `yaml:"required_tools,omitempty" json:"requiredTools,omitempty"`
	AcceptanceCriteria []string `yaml:"acceptance_criteria,omitempty" json:"acceptanceCriteria,omitempty"`
}

// Validate checks the draft field-by-field. Both title and description are
// required for a draft to be creatable.
func (d *TaskDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("task %q: description is required", d.Title)
	}
	if d.Priority != "" && !Priority(d.Priority).IsValid() {
		return fmt.Errorf("task %q: invalid priority %q", d.Title, d.Priority)
	}
	if d.TimeFrame != "" && !TimeFrame(d.TimeFrame).IsValid() {
		return fmt.Errorf("task %q: invalid time frame %q", d.Title, d.TimeFrame)
	}
	return nil
}

// Validate checks the goal draft.
func (d *GoalDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("goal %q: description is required", d.Name)
	}
	if d.Priority != "" && !Priority(d.Priority).IsValid() {
		return fmt.Errorf("goal %q: invalid priority %q", d.Name, d.Priority)
	}
	return nil
}

// planFile is the YAML import file shape.
type planFile struct {
	Goal  *GoalDraft  `yaml:"goal,omitempty"`
	Tasks []TaskDraft `yaml:"tasks"`
}

// ParsePlanFile parses a YAML goal/task definition file. Invalid tasks are
// skipped and reported in errs; a file-level parse failure is returned as
// the error.
func ParsePlanFile(content string) (goal *GoalDraft, tasks []TaskDraft, errs []error, err error) {
	var file planFile
	if err := yaml.Unmarshal([]byte(content), &file); err != nil {
		return nil, nil, nil, fmt.Errorf("parse plan file: %w", err)
	}

	if file.Goal != nil {
		if vErr := file.Goal.Validate(); vErr != nil {
			errs = append(errs, vErr)
		} else {
			goal = file.Goal
		}
	}

	for i := range file.Tasks {
		d := file.Tasks[i]
		if vErr := d.Validate(); vErr != nil {
			errs = append(errs, fmt.Errorf("tasks[%d]: %w", i, vErr))
			continue
		}
		tasks = append(tasks, d)
	}

	return goal, tasks, errs, nil
}
