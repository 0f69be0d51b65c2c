package adapter

import (
	"sync"

	"github.com/ProjectAI00/relay/internal/domain"
)

// Handles tracks the one live turn per sub-conversation across all
// adapters. Adapters register a cancel function when a turn starts and
// remove it on terminal emission; the host cancels through here without
// knowing which backend owns the turn.
type Handles struct {
	m  map[string]func()
	mu sync.Mutex
}

// NewHandles creates an empty live-handle map.
func NewHandles() *Handles {
	return &Handles{m: make(map[string]func())}
}

// Put registers the cancel function for a sub-conversation's live turn.
// Returns ErrTurnInFlight if one is already registered.
func (h *Handles) Put(subConversationID string, cancel func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.m[subConversationID]; ok {
		return domain.ErrTurnInFlight
	}
	h.m[subConversationID] = cancel
	return nil
}

// Remove drops the handle without cancelling. Safe to call when the handle
// is already gone (race with an explicit cancel).
func (h *Handles) Remove(subConversationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.m, subConversationID)
}

// Cancel stops the live turn for a sub-conversation. Idempotent: a second
// call, or a call racing natural completion, is a no-op. The cancel
// function runs outside the lock.
func (h *Handles) Cancel(subConversationID string) {
	h.mu.Lock()
	cancel, ok := h.m[subConversationID]
	delete(h.m, subConversationID)
	h.mu.Unlock()
	if ok && cancel != nil {
		cancel()
	}
}

// Active reports whether a turn is live for the sub-conversation.
func (h *Handles) Active(subConversationID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.m[subConversationID]
	return ok
}
