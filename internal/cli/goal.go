package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ProjectAI00/relay/internal/app"
	"github.com/ProjectAI00/relay/internal/usecase"
)

// newGoalCommand creates the goal command group.
func newGoalCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage goals",
	}
	cmd.AddCommand(
		newGoalNewCommand(c),
		newGoalListCommand(c),
		newGoalShowCommand(c),
		newGoalRmCommand(c),
	)
	return cmd
}

func newGoalNewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Name        string
		Description string
		Priority    string
		Workspace   string
		Context     string
		Files       []string
	}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new goal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			goal, err := c.CreateGoalUseCase().Execute(cmd.Context(), usecase.CreateGoalInput{
				Name:          opts.Name,
				Description:   opts.Description,
				Priority:      opts.Priority,
				Workspace:     opts.Workspace,
				Context:       opts.Context,
				RelevantFiles: opts.Files,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created goal %s: %s\n", goal.ID, goal.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Goal name (required)")
	cmd.Flags().StringVarP(&opts.Description, "desc", "d", "", "Goal description")
	cmd.Flags().StringVarP(&opts.Priority, "priority", "p", "", "Priority: low, medium, high, urgent")
	cmd.Flags().StringVar(&opts.Workspace, "workspace", "", "Workspace path")
	cmd.Flags().StringVar(&opts.Context, "context", "", "Free-text background for the goal")
	cmd.Flags().StringArrayVar(&opts.Files, "file", nil, "Relevant file (repeatable)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newGoalListCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List goals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			goals, err := c.ListGoalsUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}
			if len(goals) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No goals.")
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"ID", "Name", "Status", "Priority"})
			for _, g := range goals {
				tw.AppendRow(table.Row{shortID(g.ID), g.Name, renderStatus(g.Status), g.Priority})
			}
			tw.Render()
			return nil
		},
	}
}

func newGoalShowCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a goal with its tasks and insights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ShowGoalUseCase().Execute(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			g := out.Goal
			fmt.Fprintf(w, "%s %s\n", styleHeading.Render(g.Name), renderStatus(g.Status))
			fmt.Fprintf(w, "ID:       %s\n", g.ID)
			fmt.Fprintf(w, "Priority: %s\n", g.Priority)
			if g.Description != "" {
				fmt.Fprintf(w, "\n%s\n", g.Description)
			}

			if len(out.Tasks) > 0 {
				fmt.Fprintf(w, "\n%s\n", styleHeading.Render("Tasks"))
				for _, t := range out.Tasks {
					fmt.Fprintf(w, "%s %s  %s\n", t.Status.Glyph(), shortID(t.ID), t.Title)
				}
			}
			if len(out.Insights) > 0 {
				fmt.Fprintf(w, "\n%s\n", styleHeading.Render("Insights"))
				for _, m := range out.Insights {
					fmt.Fprintf(w, "- %s = %s\n", m.Key, m.Value)
				}
			}
			return nil
		},
	}
}

func newGoalRmCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a goal (its tasks are detached, not deleted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.DeleteGoalUseCase().Execute(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted goal %s\n", args[0])
			return nil
		},
	}
}
