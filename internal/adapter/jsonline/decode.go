package jsonline

import (
	"encoding/json"
	"fmt"

	"github.com/ProjectAI00/relay/internal/adapter"
)

// Events is the surface a Decoder emits onto. It owns the single text span
// for the turn so decoders never have to track span identity themselves.
// Fields are ordered to minimize memory padding.
type Events struct {
	stream    *adapter.Stream
	spanID    string
	resultErr string
	emitted   bool
}

// SessionID records the backend session id for resumption.
func (ev *Events) SessionID(id string) {
	ev.stream.SessionID(id)
}

// Text appends assistant text to the turn's span.
func (ev *Events) Text(text string) {
	if text == "" {
		return
	}
	ev.emitted = true
	ev.stream.TextDelta(ev.spanID, text)
}

// ToolStart announces a tool invocation with its full input.
func (ev *Events) ToolStart(callID, name string, input json.RawMessage) {
	ev.emitted = true
	ev.stream.ToolInputStart(callID)
	ev.stream.ToolInputAvailable(callID, name, input)
}

// ToolResult records a tool's terminal output.
func (ev *Events) ToolResult(callID, output string, isErr bool) {
	ev.emitted = true
	if isErr {
		ev.stream.ToolError(callID, output)
		return
	}
	ev.stream.ToolOutput(callID, output)
}

// Fail records a structured error reported inside the stream itself. The
// adapter decides later whether the process exit confirms it.
func (ev *Events) Fail(msg string) {
	if msg != "" {
		ev.resultErr = msg
	}
}

// ClaudeDecoder handles the claude CLI's stream-json output
// (--output-format stream-json --verbose).
type ClaudeDecoder struct{}

var _ Decoder = ClaudeDecoder{}

type claudeEnvelope struct {
	Message struct {
		Content []claudeContent `json:"content"`
	} `json:"message"`
	Type      string `json:"type"`
	Subtype   string `json:"subtype"`
	SessionID string `json:"session_id"`
	Result    string `json:"result"`
	IsError   bool   `json:"is_error"`
}

type claudeContent struct {
	Input     json.RawMessage `json:"input"`
	Content   json.RawMessage `json:"content"`
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	ToolUseID string          `json:"tool_use_id"`
	IsError   bool            `json:"is_error"`
}

// DecodeLine routes one claude stream-json message. Unknown types are
// ignored.
func (ClaudeDecoder) DecodeLine(line []byte, ev *Events) {
	var msg claudeEnvelope
	if err := json.Unmarshal(line, &msg); err != nil {
		return
	}
	switch msg.Type {
	case "system":
		if msg.Subtype == "init" && msg.SessionID != "" {
			ev.SessionID(msg.SessionID)
		}
	case "assistant":
		for _, c := range msg.Message.Content {
			switch c.Type {
			case "text":
				ev.Text(c.Text)
			case "tool_use":
				ev.ToolStart(c.ID, c.Name, c.Input)
			}
		}
	case "user":
		for _, c := range msg.Message.Content {
			if c.Type == "tool_result" {
				ev.ToolResult(c.ToolUseID, flattenToolResult(c.Content), c.IsError)
			}
		}
	case "result":
		if msg.IsError {
			ev.Fail(msg.Result)
		}
	}
}

// flattenToolResult accepts the two shapes claude uses for tool_result
// content, a bare string or a list of content blocks.
func flattenToolResult(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &blocks); err == nil {
		out := ""
		for _, b := range blocks {
			if b.Type == "text" {
				out += b.Text
			}
		}
		return out
	}
	return string(raw)
}

// CodexDecoder handles codex exec --json output, where each line carries a
// msg object discriminated by msg.type.
type CodexDecoder struct{}

var _ Decoder = CodexDecoder{}

type codexEnvelope struct {
	Msg struct {
		Type          string          `json:"type"`
		SessionID     string          `json:"session_id"`
		Message       string          `json:"message"`
		CallID        string          `json:"call_id"`
		Command       json.RawMessage `json:"command"`
		AggregatedOut string          `json:"aggregated_output"`
		ExitCode      *int            `json:"exit_code"`
		LastAgentNote string          `json:"last_agent_message"`
	} `json:"msg"`
	ID string `json:"id"`
}

// DecodeLine routes one codex event. Unknown types are ignored.
func (CodexDecoder) DecodeLine(line []byte, ev *Events) {
	var msg codexEnvelope
	if err := json.Unmarshal(line, &msg); err != nil {
		return
	}
	switch msg.Msg.Type {
	case "session_configured":
		if msg.Msg.SessionID != "" {
			ev.SessionID(msg.Msg.SessionID)
		}
	case "agent_message":
		ev.Text(msg.Msg.Message)
	case "exec_command_begin":
		ev.ToolStart(msg.Msg.CallID, "exec", msg.Msg.Command)
	case "exec_command_end":
		isErr := msg.Msg.ExitCode != nil && *msg.Msg.ExitCode != 0
		out := msg.Msg.AggregatedOut
		if isErr && out == "" {
			out = fmt.Sprintf("command exited with code %d", *msg.Msg.ExitCode)
		}
		ev.ToolResult(msg.Msg.CallID, out, isErr)
	case "error":
		ev.Fail(msg.Msg.Message)
	case "task_complete":
		if msg.Msg.LastAgentNote != "" && !ev.emitted {
			ev.Text(msg.Msg.LastAgentNote)
		}
	}
}
