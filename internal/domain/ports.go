package domain

import (
	"context"
	"time"
)

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store schema if it doesn't exist.
	Initialize() error
}

// BackendAdapter wraps one external AI coding-assistant backend behind the
// shared chunk protocol. Implementations exclusively own their process or
// session handles; callers only ever see chunks.
type BackendAdapter interface {
	// ID returns the backend identifier used for registry lookup.
	ID() string

	// IsAvailable reports whether the backend can run on this machine.
	// It must not block or spawn the backend.
	IsAvailable() bool

	// Chat runs one turn and returns an ordered chunk stream. The channel
	// is closed after the finish chunk. Cancellation via ctx or Cancel
	// still yields a well-formed terminal sequence.
	Chat(ctx context.Context, in TurnInput) (<-chan Chunk, error)

	// Cancel stops the live turn for a sub-conversation, if any.
	// Idempotent: calling it twice, or after natural completion, is a no-op.
	Cancel(subConversationID string)
}

// GoalRepository manages goal persistence.
type GoalRepository interface {
	// GetGoal retrieves a goal by ID. Returns nil if not found.
	GetGoal(ctx context.Context, id string) (*Goal, error)

	// ListGoals retrieves all goals ordered by creation time.
	ListGoals(ctx context.Context) ([]*Goal, error)

	// SaveGoal creates or updates a goal.
	SaveGoal(ctx context.Context, goal *Goal) error

	// DeleteGoal removes a goal and detaches its tasks.
	DeleteGoal(ctx context.Context, id string) error
}

// TaskRepository manages task persistence.
type TaskRepository interface {
	// GetTask retrieves a task by ID. Returns nil if not found.
	GetTask(ctx context.Context, id string) (*Task, error)

	// ListTasks retrieves tasks matching the filter, ordered by creation time.
	ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error)

	// SaveTask creates or updates a task.
	SaveTask(ctx context.Context, task *Task) error

	// DeleteTask removes a task by ID.
	DeleteTask(ctx context.Context, id string) error

	// CompleteTask marks a task done with its summary and, in the same
	// transaction, re-reads sibling state and marks the goal done if no
	// pending tasks remain. Returns whether the goal completed.
	CompleteTask(ctx context.Context, taskID, summary string, now time.Time) (goalCompleted bool, err error)
}

// TaskFilter specifies criteria for listing tasks.
type TaskFilter struct {
	GoalID  string // Non-empty = only tasks of this goal
	Status  Status // Non-empty = only tasks with this status
	Pending bool   // true = only tasks whose status is pending
}

// MemoryRepository manages goal-scoped insight persistence.
type MemoryRepository interface {
	// UpsertMemory records a (goal, key) fact, overwriting the value if the
	// key already exists for the goal.
	UpsertMemory(ctx context.Context, goalID, key, value string, source MemorySource, now time.Time) error

	// ListMemories retrieves all insights recorded for a goal.
	ListMemories(ctx context.Context, goalID string) ([]*Memory, error)
}

// ChatRepository manages conversation persistence.
type ChatRepository interface {
	// GetChat retrieves a chat by ID. Returns nil if not found.
	GetChat(ctx context.Context, id string) (*Chat, error)

	// SaveChat creates or updates a chat.
	SaveChat(ctx context.Context, chat *Chat) error

	// GetSubChat retrieves a sub-chat by ID. Returns nil if not found.
	GetSubChat(ctx context.Context, id string) (*SubChat, error)

	// SaveSubChat creates or updates a sub-chat.
	SaveSubChat(ctx context.Context, subChat *SubChat) error

	// AppendMessage appends a message to a sub-chat's history.
	AppendMessage(ctx context.Context, msg *Message) error

	// ListMessages retrieves a sub-chat's history in chronological order.
	ListMessages(ctx context.Context, subChatID string) ([]*Message, error)
}

// Logger writes structured progress for debugging. Conversation id scopes
// the log file; empty means the global log.
type Logger interface {
	Debug(conversationID, category, msg string)
	Info(conversationID, category, msg string)
	Warn(conversationID, category, msg string)
	Error(conversationID, category, msg string)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
