package adapter

import (
	"context"
	"sync"
	"time"

	"github.com/ProjectAI00/relay/internal/domain"
)

// Answer is the outcome of an ask-user question.
// Fields are ordered to minimize memory padding.
type Answer struct {
	Answers  []string // User-provided answers (empty on timeout/error)
	Reason   string   // Error reason supplied by the caller, if any
	TimedOut bool
}

// AskUserResolver is a pending-request table keyed by tool-call id. It is
// the one place raw cross-turn external input re-enters an in-flight
// stream: an adapter suspends a tool call on Wait, and SubmitAnswer from
// the host resolves it. Each slot resolves exactly once.
type AskUserResolver struct {
	pending map[string]chan Answer
	mu      sync.Mutex
}

// NewAskUserResolver creates an empty resolver table.
func NewAskUserResolver() *AskUserResolver {
	return &AskUserResolver{pending: make(map[string]chan Answer)}
}

// Wait blocks until the question is answered, the timeout elapses, or the
// context is cancelled. The slot is removed on return, whatever the
// outcome. A timeout yields Answer{TimedOut: true}, not an error, so the
// adapter can complete the suspended tool call with a timeout outcome.
func (r *AskUserResolver) Wait(ctx context.Context, toolCallID string, timeout time.Duration) (Answer, error) {
	ch := make(chan Answer, 1)

	r.mu.Lock()
	if _, ok := r.pending[toolCallID]; ok {
		r.mu.Unlock()
		return Answer{}, domain.ErrQuestionResolved
	}
	r.pending[toolCallID] = ch
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.pending, toolCallID)
		r.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ans := <-ch:
		return ans, nil
	case <-timer.C:
		return Answer{TimedOut: true}, nil
	case <-ctx.Done():
		return Answer{}, ctx.Err()
	}
}

// Resolve delivers the user's answer for a pending question. A second
// resolution for the same call id returns ErrQuestionNotFound because the
// slot is consumed by the first.
func (r *AskUserResolver) Resolve(toolCallID string, ans Answer) error {
	r.mu.Lock()
	ch, ok := r.pending[toolCallID]
	if ok {
		delete(r.pending, toolCallID)
	}
	r.mu.Unlock()

	if !ok {
		return domain.ErrQuestionNotFound
	}
	ch <- ans
	return nil
}

// Pending reports whether a question is waiting for the given call id.
func (r *AskUserResolver) Pending(toolCallID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[toolCallID]
	return ok
}
