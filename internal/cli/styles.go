package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ProjectAI00/relay/internal/domain"
)

var (
	styleDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleActive  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleReview  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleHeading = lipgloss.NewStyle().Bold(true)
)

// renderStatus colors a status for terminal display.
func renderStatus(s domain.Status) string {
	switch s {
	case domain.StatusDone:
		return styleDone.Render(s.Display())
	case domain.StatusInProgress, domain.StatusOngoing:
		return styleActive.Render(s.Display())
	case domain.StatusReview:
		return styleReview.Render(s.Display())
	default:
		return styleMuted.Render(s.Display())
	}
}
