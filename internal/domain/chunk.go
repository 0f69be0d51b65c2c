package domain

import (
	"encoding/json"
	"time"
)

// ChunkType discriminates the streaming protocol's tagged union.
type ChunkType string

const (
	ChunkStart                  ChunkType = "start"
	ChunkFinish                 ChunkType = "finish"
	ChunkSessionID              ChunkType = "session-id"
	ChunkTextStart              ChunkType = "text-start"
	ChunkTextDelta              ChunkType = "text-delta"
	ChunkTextEnd                ChunkType = "text-end"
	ChunkToolInputStart         ChunkType = "tool-input-start"
	ChunkToolInputAvailable     ChunkType = "tool-input-available"
	ChunkToolOutputAvailable    ChunkType = "tool-output-available"
	ChunkToolOutputError        ChunkType = "tool-output-error"
	ChunkError                  ChunkType = "error"
	ChunkAuthError              ChunkType = "auth-error"
	ChunkAskUserQuestion        ChunkType = "ask-user-question"
	ChunkAskUserQuestionTimeout ChunkType = "ask-user-question-timeout"
	ChunkTasksCreated           ChunkType = "tasks-created"
	ChunkGoalCreated            ChunkType = "goal-created"
)

// ErrorKind classifies stream error chunks so callers can react without
// parsing messages.
type ErrorKind string

const (
	ErrorKindNotInstalled  ErrorKind = "not_installed"
	ErrorKindAuthRequired  ErrorKind = "auth_required"
	ErrorKindRateLimited   ErrorKind = "rate_limited"
	ErrorKindOverloaded    ErrorKind = "overloaded"
	ErrorKindProcessCrash  ErrorKind = "process_crash"
	ErrorKindProtocolError ErrorKind = "protocol_error"
	ErrorKindTimeout       ErrorKind = "timeout"
	ErrorKindCancelled     ErrorKind = "cancelled"
)

// Question is an interactive clarifying question raised mid-turn. The turn
// blocks until it is answered or Timeout elapses.
// Fields are ordered to minimize memory padding.
type Question struct {
	ToolCallID string        `json:"toolCallId"`
	Prompt     string        `json:"prompt"`
	Options    []string      `json:"options,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty"`
}

// Chunk is one message of the normalized streaming protocol. Exactly the
// fields implied by Type are populated.
// Fields are ordered to minimize memory padding.
type Chunk struct {
	ToolInput    json.RawMessage `json:"toolInput,omitempty"`
	Question     *Question       `json:"question,omitempty"`
	SessionID    string          `json:"sessionId,omitempty"`
	SpanID       string          `json:"spanId,omitempty"`
	Text         string          `json:"text,omitempty"`
	ToolCallID   string          `json:"toolCallId,omitempty"`
	ToolName     string          `json:"toolName,omitempty"`
	ToolOutput   string          `json:"toolOutput,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	Backend      string          `json:"backend,omitempty"`
	GoalID       string          `json:"goalId,omitempty"`
	TaskIDs      []string        `json:"taskIds,omitempty"`
	ErrorKind    ErrorKind       `json:"errorKind,omitempty"`
	Type         ChunkType       `json:"type"`
}

// IsTerminal reports whether this chunk ends the stream.
func (c Chunk) IsTerminal() bool {
	return c.Type == ChunkFinish
}
