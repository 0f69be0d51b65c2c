package prompt

import (
	"fmt"
	"strings"

	"github.com/ProjectAI00/relay/internal/domain"
)

const summaryLimit = 400

// completionInstructions tells the backend how to report a finished task so
// the completion parser can pick it up.
const completionInstructions = `When you finish this task, end your reply with:

SUMMARY:
<what you did, what changed, and anything the next task should know>

Optionally record reusable facts, one per line:
INSIGHT: key = value`

// TaskBrief renders the execution context for a single task turn: the
// owning goal, sibling progress, recorded insights, and the completion
// reporting format.
func TaskBrief(goal *domain.Goal, task *domain.Task, siblings []domain.Task, insights []domain.Memory) string {
	var b strings.Builder

	if goal != nil {
		fmt.Fprintf(&b, "## Goal: %s\n", goal.Name)
		if goal.Description != "" {
			b.WriteString(goal.Description + "\n")
		}
		if goal.Context != "" {
			b.WriteString(goal.Context + "\n")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Current task: %s\n", task.Title)
	if task.Description != "" {
		b.WriteString(task.Description + "\n")
	}
	writeExecution(&b, task.Execution)
	b.WriteString("\n")

	if len(siblings) > 0 {
		b.WriteString("## Other tasks in this goal\n")
		for _, s := range siblings {
			if s.ID == task.ID {
				continue
			}
			fmt.Fprintf(&b, "%s %s\n", s.Status.Glyph(), s.Title)
			if s.Status == domain.StatusDone && s.Summary != "" {
				fmt.Fprintf(&b, "    %s\n", truncate(s.Summary, summaryLimit))
			}
		}
		b.WriteString("\n")
	}

	writeInsights(&b, insights)
	b.WriteString(completionInstructions)
	return b.String()
}

// GoalBrief renders the orchestration context for a goal-level turn, where
// the backend decides how to schedule the goal's tasks.
func GoalBrief(goal *domain.Goal, tasks []domain.Task, insights []domain.Memory, maxConcurrent int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Goal: %s\n", goal.Name)
	if goal.Description != "" {
		b.WriteString(goal.Description + "\n")
	}
	if goal.Context != "" {
		b.WriteString(goal.Context + "\n")
	}
	if len(goal.RelevantFiles) > 0 {
		fmt.Fprintf(&b, "Relevant files: %s\n", strings.Join(goal.RelevantFiles, ", "))
	}
	b.WriteString("\n## Tasks\n")
	for _, t := range tasks {
		fmt.Fprintf(&b, "%s [%s] %s\n", t.Status.Glyph(), t.Priority, t.Title)
		if t.Status == domain.StatusDone && t.Summary != "" {
			fmt.Fprintf(&b, "    %s\n", truncate(t.Summary, summaryLimit))
		}
	}
	b.WriteString("\n")

	writeInsights(&b, insights)

	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	b.WriteString("## Execution strategy\n")
	fmt.Fprintf(&b, "Run at most %d tasks concurrently.\n", maxConcurrent)
	b.WriteString("Treat tasks as independent only when their relevant files do not overlap; ")
	b.WriteString("run overlapping tasks sequentially in priority order.\n")
	b.WriteString("After each sub-task, report its outcome with the task title followed by a SUMMARY block.\n")
	return b.String()
}

func writeExecution(b *strings.Builder, ec domain.ExecutionContext) {
	if ec.Workspace != "" {
		fmt.Fprintf(b, "Workspace: %s\n", ec.Workspace)
	}
	if len(ec.RelevantFiles) > 0 {
		fmt.Fprintf(b, "Relevant files: %s\n", strings.Join(ec.RelevantFiles, ", "))
	}
	if len(ec.RequiredTools) > 0 {
		fmt.Fprintf(b, "Required tools: %s\n", strings.Join(ec.RequiredTools, ", "))
	}
	if len(ec.AcceptanceCriteria) > 0 {
		b.WriteString("Acceptance criteria:\n")
		for _, c := range ec.AcceptanceCriteria {
			fmt.Fprintf(b, "- %s\n", c)
		}
	}
}

func writeInsights(b *strings.Builder, insights []domain.Memory) {
	if len(insights) == 0 {
		return
	}
	b.WriteString("## Recorded insights\n")
	for _, in := range insights {
		fmt.Fprintf(b, "- %s = %s\n", in.Key, in.Value)
	}
	b.WriteString("\n")
}
