package domain

import (
	"encoding/json"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessagePartType identifies the kind of content inside a message part.
type MessagePartType string

const (
	PartText       MessagePartType = "text"
	PartToolUse    MessagePartType = "tool-use"
	PartToolResult MessagePartType = "tool-result"
)

// MessagePart is one piece of a message: plain text, a tool invocation,
// or a tool result.
// Fields are ordered to minimize memory padding.
type MessagePart struct {
	ToolInput  json.RawMessage `json:"toolInput,omitempty"`
	Text       string          `json:"text,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
	ToolName   string          `json:"toolName,omitempty"`
	ToolOutput string          `json:"toolOutput,omitempty"`
	Type       MessagePartType `json:"type"`
	IsError    bool            `json:"isError,omitempty"` // tool-result only
}

// Message is one entry in a sub-conversation's history.
// Fields are ordered to minimize memory padding.
type Message struct {
	Created   time.Time     `json:"created"`
	ID        string        `json:"id"`
	SubChatID string        `json:"subChatId"`
	Role      Role          `json:"role"`
	Parts     []MessagePart `json:"parts"`
}

// Text concatenates the plain-text parts of the message.
func (m *Message) Text() string {
	var out string
	for _, p := range m.Parts {
		if p.Type == PartText {
			out += p.Text
		}
	}
	return out
}

// Chat is a top-level conversation.
// Fields are ordered to minimize memory padding.
type Chat struct {
	Created time.Time `json:"created"`
	ID      string    `json:"id"`
	Title   string    `json:"title,omitempty"`
}

// SubChat is a sub-conversation: the unit a turn is scoped to. At most one
// stream runs per sub-chat at a time; the backend session id persisted here
// allows resume on the next turn.
// Fields are ordered to minimize memory padding.
type SubChat struct {
	Created   time.Time `json:"created"`
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	Backend   string    `json:"backend,omitempty"`   // Last backend used
	SessionID string    `json:"sessionId,omitempty"` // Backend session id for resume
}
