package usecase

import (
	"context"

	"github.com/ProjectAI00/relay/internal/adapter"
)

// CancelTurnInput contains the parameters for cancelling a running turn.
type CancelTurnInput struct {
	SubConversationID string
}

// CancelTurn is the use case for stopping the live turn of a
// sub-conversation. Idempotent: cancelling a sub-conversation with no
// running turn is a no-op.
type CancelTurn struct {
	handles *adapter.Handles
}

// NewCancelTurn creates a new CancelTurn use case.
func NewCancelTurn(handles *adapter.Handles) *CancelTurn {
	return &CancelTurn{handles: handles}
}

// Execute cancels the turn. The stream still delivers a well-formed
// terminal sequence; callers observe completion through the chunk channel.
func (uc *CancelTurn) Execute(_ context.Context, in CancelTurnInput) error {
	uc.handles.Cancel(in.SubConversationID)
	return nil
}
