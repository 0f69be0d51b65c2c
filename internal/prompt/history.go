// Package prompt builds the context text sent to a backend ahead of the
// user's message. Builders are pure functions of already-fetched state.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ProjectAI00/relay/internal/domain"
)

// Options bounds how much conversation history a turn may carry.
// Fields are ordered to minimize memory padding.
type Options struct {
	MaxTokens       int // Rough token budget for the rendered history
	MaxMessages     int // Hard cap on the number of messages considered
	ToolOutputLimit int // Per-part cap on rendered tool output, in characters
}

// DefaultOptions returns the standard history budget.
func DefaultOptions() Options {
	return Options{
		MaxTokens:       8000,
		MaxMessages:     20,
		ToolOutputLimit: 500,
	}
}

// BuildContext renders conversation history for inclusion in a prompt. The
// newest MaxMessages messages are considered, then dropped oldest-first
// until the rendered text fits MaxTokens. Output is chronological.
func BuildContext(messages []domain.Message, opts Options) string {
	if len(messages) == 0 {
		return ""
	}
	if opts.MaxMessages > 0 && len(messages) > opts.MaxMessages {
		messages = messages[len(messages)-opts.MaxMessages:]
	}

	rendered := make([]string, len(messages))
	for i, m := range messages {
		rendered[i] = renderMessage(m, opts.ToolOutputLimit)
	}

	// Walk newest to oldest so the most recent exchange always survives
	// the budget.
	budget := opts.MaxTokens
	start := 0
	if budget > 0 {
		used := 0
		start = len(rendered)
		for i := len(rendered) - 1; i >= 0; i-- {
			cost := estimateTokens(rendered[i])
			if used+cost > budget && start < len(rendered) {
				break
			}
			used += cost
			start = i
		}
	}

	kept := rendered[start:]
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "\n")
}

// estimateTokens approximates token count as one token per four characters.
func estimateTokens(s string) int {
	return len(s) / 4
}

func renderMessage(m domain.Message, toolOutputLimit int) string {
	label := "User"
	if m.Role == domain.RoleAssistant {
		label = "Assistant"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:", label)
	for _, part := range m.Parts {
		switch part.Type {
		case domain.PartText:
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(part.Text))
		case domain.PartToolUse:
			fmt.Fprintf(&b, "\n[tool %s] %s", part.ToolName, truncate(string(part.ToolInput), toolOutputLimit))
		case domain.PartToolResult:
			tag := "tool result"
			if part.IsError {
				tag = "tool error"
			}
			fmt.Fprintf(&b, "\n[%s] %s", tag, truncate(part.ToolOutput, toolOutputLimit))
		}
	}
	return b.String()
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 || len(s) <= limit {
		return s
	}
	// Back off to a rune boundary so the cut never leaves a partial
	// UTF-8 sequence in the prompt.
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + "…"
}
