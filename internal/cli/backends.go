package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ProjectAI00/relay/internal/app"
)

// newBackendsCommand creates the backends command.
func newBackendsCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List configured backends and their availability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos := c.ListBackendsUseCase().Execute(cmd.Context())

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Name", "Kind", "Command", "Status"})
			for _, b := range infos {
				status := styleError.Render("not installed")
				switch {
				case b.Disabled:
					status = styleMuted.Render("disabled")
				case b.Available:
					status = styleDone.Render("available")
				}
				tw.AppendRow(table.Row{b.Name, b.Kind, b.Command, status})
			}
			tw.Render()

			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "Configure backends in ~/.config/relay/config.toml or ./config.toml.")
			return nil
		},
	}
}
