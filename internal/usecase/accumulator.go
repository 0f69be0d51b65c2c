package usecase

import (
	"encoding/json"

	"github.com/ProjectAI00/relay/internal/domain"
)

// turnAccumulator rebuilds the assistant message from stream chunks. Parts
// keep arrival order; deltas for the same span extend one text part, tool
// results land on the part opened by the matching tool-use.
// Fields are ordered to minimize memory padding.
type turnAccumulator struct {
	spanIdx map[string]int
	toolIdx map[string]int
	parts   []domain.MessagePart
}

func (a *turnAccumulator) textDelta(spanID, text string) {
	if a.spanIdx == nil {
		a.spanIdx = make(map[string]int)
	}
	if i, ok := a.spanIdx[spanID]; ok {
		a.parts[i].Text += text
		return
	}
	a.parts = append(a.parts, domain.MessagePart{Type: domain.PartText, Text: text})
	a.spanIdx[spanID] = len(a.parts) - 1
}

func (a *turnAccumulator) toolUse(callID, name string, input json.RawMessage) {
	if a.toolIdx == nil {
		a.toolIdx = make(map[string]int)
	}
	a.parts = append(a.parts, domain.MessagePart{
		Type:       domain.PartToolUse,
		ToolCallID: callID,
		ToolName:   name,
		ToolInput:  input,
	})
	a.toolIdx[callID] = len(a.parts) - 1
}

func (a *turnAccumulator) toolResult(callID, output string, isErr bool) {
	name := ""
	if i, ok := a.toolIdx[callID]; ok {
		name = a.parts[i].ToolName
	}
	a.parts = append(a.parts, domain.MessagePart{
		Type:       domain.PartToolResult,
		ToolCallID: callID,
		ToolName:   name,
		ToolOutput: output,
		IsError:    isErr,
	})
}

// text concatenates the accumulated plain-text parts.
func (a *turnAccumulator) text() string {
	var out string
	for _, p := range a.parts {
		if p.Type == domain.PartText {
			out += p.Text
		}
	}
	return out
}
