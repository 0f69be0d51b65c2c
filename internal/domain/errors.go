package domain

import "errors"

// Domain errors.
var (
	ErrGoalNotFound        = errors.New("goal not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrChatNotFound        = errors.New("chat not found")
	ErrSubChatNotFound     = errors.New("sub-chat not found")
	ErrBackendNotFound     = errors.New("backend not found")
	ErrBackendDisabled     = errors.New("backend is disabled")
	ErrBackendNotInstalled = errors.New("backend is not installed")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidMode         = errors.New("invalid mode")
	ErrEmptyTitle          = errors.New("title cannot be empty")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrEmptyPrompt         = errors.New("prompt cannot be empty")
	ErrNoBackend           = errors.New("no backend specified")
	ErrNoSubConversation   = errors.New("no sub-conversation specified")
	ErrTurnInFlight        = errors.New("a turn is already running for this sub-conversation")
	ErrQuestionNotFound    = errors.New("no pending question for tool call")
	ErrQuestionResolved    = errors.New("question already resolved")
	ErrStreamFinished      = errors.New("stream already finished")
)
