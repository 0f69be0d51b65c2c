package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ProjectAI00/relay/internal/app"
	"github.com/ProjectAI00/relay/internal/domain"
	"github.com/ProjectAI00/relay/internal/usecase"
)

// newTaskCommand creates the task command group.
func newTaskCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		newTaskNewCommand(c),
		newTaskListCommand(c),
		newTaskShowCommand(c),
		newTaskEditCommand(c),
		newTaskRmCommand(c),
		newTaskImportCommand(c),
	)
	return cmd
}

func newTaskNewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		GoalID      string
		Priority    string
		TimeFrame   string
		Workspace   string
		Files       []string
	}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new task",
		Long: `Create a new task with status 'todo'.

Examples:
  relay task new --title "Fix login bug" --desc "Session expires too early"
  relay task new --title "Write docs" --priority high --time-frame this_week
  relay task new --title "Refactor auth" --goal <goal-id> --file internal/auth/login.go`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			task, err := c.CreateTaskUseCase().Execute(cmd.Context(), usecase.CreateTaskInput{
				Title:       opts.Title,
				Description: opts.Description,
				GoalID:      opts.GoalID,
				Priority:    opts.Priority,
				TimeFrame:   opts.TimeFrame,
				Execution: domain.ExecutionContext{
					Workspace:     opts.Workspace,
					RelevantFiles: opts.Files,
				},
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s: %s\n", task.ID, task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Title, "title", "t", "", "Task title (required)")
	cmd.Flags().StringVarP(&opts.Description, "desc", "d", "", "Task description")
	cmd.Flags().StringVar(&opts.GoalID, "goal", "", "Owning goal id")
	cmd.Flags().StringVarP(&opts.Priority, "priority", "p", "", "Priority: low, medium, high, urgent")
	cmd.Flags().StringVar(&opts.TimeFrame, "time-frame", "", "Time frame: today, tomorrow, this_week, next_week, this_month")
	cmd.Flags().StringVar(&opts.Workspace, "workspace", "", "Working directory for the task")
	cmd.Flags().StringArrayVar(&opts.Files, "file", nil, "Relevant file (repeatable)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newTaskListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		GoalID  string
		Status  string
		Pending bool
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := c.ListTasksUseCase().Execute(cmd.Context(), usecase.ListTasksInput{
				GoalID:  opts.GoalID,
				Status:  opts.Status,
				Pending: opts.Pending,
			})
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"ID", "Title", "Status", "Priority", "Goal", "Due"})
			for _, t := range tasks {
				due := ""
				if !t.DueDate.IsZero() {
					due = t.DueDate.Format("2006-01-02")
				}
				tw.AppendRow(table.Row{shortID(t.ID), t.Title, renderStatus(t.Status), t.Priority, shortID(t.GoalID), due})
			}
			tw.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.GoalID, "goal", "", "Only tasks of this goal")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Only tasks with this status")
	cmd.Flags().BoolVar(&opts.Pending, "pending", false, "Only pending tasks")

	return cmd
}

func newTaskShowCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := c.ListTasksUseCase().Execute(cmd.Context(), usecase.ListTasksInput{})
			if err != nil {
				return err
			}
			task := findTask(tasks, args[0])
			if task == nil {
				return fmt.Errorf("task %s: %w", args[0], domain.ErrTaskNotFound)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", styleHeading.Render(task.Title), renderStatus(task.Status))
			fmt.Fprintf(out, "ID:       %s\n", task.ID)
			fmt.Fprintf(out, "Priority: %s\n", task.Priority)
			if task.GoalID != "" {
				fmt.Fprintf(out, "Goal:     %s\n", task.GoalID)
			}
			if !task.DueDate.IsZero() {
				fmt.Fprintf(out, "Due:      %s\n", task.DueDate.Format("2006-01-02"))
			}
			if task.Description != "" {
				fmt.Fprintf(out, "\n%s\n", task.Description)
			}
			if task.Summary != "" {
				fmt.Fprintf(out, "\n%s\n%s\n", styleHeading.Render("Summary"), task.Summary)
			}
			return nil
		},
	}
}

func newTaskEditCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		Status      string
		Priority    string
	}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := usecase.EditTaskInput{TaskID: args[0]}
			if cmd.Flags().Changed("title") {
				in.Title = &opts.Title
			}
			if cmd.Flags().Changed("desc") {
				in.Description = &opts.Description
			}
			if cmd.Flags().Changed("status") {
				in.Status = &opts.Status
			}
			if cmd.Flags().Changed("priority") {
				in.Priority = &opts.Priority
			}
			task, err := c.EditTaskUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&opts.Description, "desc", "d", "", "New description")
	cmd.Flags().StringVarP(&opts.Status, "status", "s", "", "New status")
	cmd.Flags().StringVarP(&opts.Priority, "priority", "p", "", "New priority")

	return cmd
}

func newTaskRmCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.DeleteTaskUseCase().Execute(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		},
	}
}

func newTaskImportCommand(c *app.Container) *cobra.Command {
	var opts struct {
		GoalID string
		DryRun bool
	}

	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create a goal and tasks from a YAML definition file",
		Long: `Import a plan file. The file may define a goal, a list of tasks, or
both; tasks defined alongside a goal belong to it.

File format:
  goal:
    name: Ship v1
    description: First public release
  tasks:
    - title: Write changelog
      description: Summarize changes since beta
      priority: high
      time_frame: this_week`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read plan file: %w", err)
			}
			out, err := c.ImportPlanUseCase().Execute(cmd.Context(), usecase.ImportPlanInput{
				Content: string(content),
				GoalID:  opts.GoalID,
				DryRun:  opts.DryRun,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			verb := "Created"
			if opts.DryRun {
				verb = "Would create"
			}
			if out.Goal != nil {
				fmt.Fprintf(w, "%s goal %s: %s\n", verb, out.Goal.ID, out.Goal.Name)
			}
			for _, t := range out.Tasks {
				fmt.Fprintf(w, "%s task %s: %s\n", verb, t.ID, t.Title)
			}
			for _, e := range out.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render(fmt.Sprintf("skipped: %v", e)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.GoalID, "goal", "", "Attach standalone tasks to this goal")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Parse and validate without creating anything")

	return cmd
}

// findTask matches a task by full id or unambiguous prefix.
func findTask(tasks []*domain.Task, id string) *domain.Task {
	var match *domain.Task
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
		if strings.HasPrefix(t.ID, id) {
			if match != nil {
				return nil // ambiguous
			}
			match = t
		}
	}
	return match
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
