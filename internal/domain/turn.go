package domain

// Mode selects how a turn's prompt is framed and post-processed.
type Mode string

const (
	ModePlan  Mode = "plan"  // Produce a goal/task plan; output is scanned for plan blocks
	ModeAgent Mode = "agent" // Execute work; completion parsing applies when a task is bound
	ModeAsk   Mode = "ask"   // Q&A only, no state mutation
)

// IsValid returns true if the mode is a known value.
func (m Mode) IsValid() bool {
	switch m {
	case ModePlan, ModeAgent, ModeAsk:
		return true
	default:
		return false
	}
}

// TurnInput names everything needed to run one prompt/response exchange
// with a backend. Immutable for the duration of the turn.
// Fields are ordered to minimize memory padding.
type TurnInput struct {
	ConversationID    string // Chat id
	SubConversationID string // Sub-chat id; scopes the stream and the live handle
	Prompt            string // User prompt text
	Cwd               string // Working directory for the backend process
	Backend           string // Adapter id
	SessionID         string // Optional backend session id to resume
	Model             string // Optional model override
	GoalID            string // Optional goal for context injection
	TaskID            string // Optional task for context injection
	Mode              Mode
}

// Validate checks required fields.
func (in *TurnInput) Validate() error {
	if in.SubConversationID == "" {
		return ErrNoSubConversation
	}
	if in.Backend == "" {
		return ErrNoBackend
	}
	if in.Mode != "" && !in.Mode.IsValid() {
		return ErrInvalidMode
	}
	return nil
}
