// Package cli provides the command-line interface for relay.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/ProjectAI00/relay/internal/app"
)

// Command group IDs.
const (
	groupChat = "chat"
	groupPlan = "plan"
)

// NewRootCommand creates the root command for relay.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "relay",
		Short: "One streaming protocol for AI coding-assistant backends",
		Long: `relay drives AI coding-assistant CLIs and agents behind a single
chunk-stream protocol, and tracks the goals, tasks, and insights that
come out of those conversations.

Backends are configured in ~/.config/relay/config.toml; a config.toml
in the working directory overrides it per project.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
	}

	root.AddGroup(
		&cobra.Group{ID: groupChat, Title: "Conversation:"},
		&cobra.Group{ID: groupPlan, Title: "Goals & Tasks:"},
	)

	chatCmd := newChatCommand(c)
	chatCmd.GroupID = groupChat

	backendsCmd := newBackendsCommand(c)
	backendsCmd.GroupID = groupChat

	taskCmd := newTaskCommand(c)
	taskCmd.GroupID = groupPlan

	goalCmd := newGoalCommand(c)
	goalCmd.GroupID = groupPlan

	root.AddCommand(chatCmd, backendsCmd, taskCmd, goalCmd)
	return root
}
