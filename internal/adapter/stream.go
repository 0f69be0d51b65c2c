// Package adapter hosts the backend adapter registry, the live-handle map,
// the ask-user resolver, and the chunk stream emitter shared by all backend
// families.
package adapter

import (
	"encoding/json"
	"sync"

	"github.com/ProjectAI00/relay/internal/domain"
)

// streamBuffer is sized so adapters rarely block on slow consumers.
const streamBuffer = 64

// Stream emits chunks on a channel while enforcing the protocol invariants:
// every opened text span is closed before finish, no delta after end, at
// most one terminal output per tool call, and exactly one finish per turn.
// Emits after Finish are silently dropped, which lets adapters latch their
// terminal sequence without coordinating process error/close callbacks.
// Fields are ordered to minimize memory padding.
type Stream struct {
	ch        chan domain.Chunk
	openSpans map[string]bool
	toolsDone map[string]bool
	mu        sync.Mutex
	finished  bool
}

// NewStream creates a chunk stream for one turn.
func NewStream() *Stream {
	return &Stream{
		ch:        make(chan domain.Chunk, streamBuffer),
		openSpans: make(map[string]bool),
		toolsDone: make(map[string]bool),
	}
}

// Chunks returns the receive side of the stream. The channel closes after
// the finish chunk.
func (s *Stream) Chunks() <-chan domain.Chunk {
	return s.ch
}

// Start emits the message lifecycle start chunk.
func (s *Stream) Start() {
	s.emit(domain.Chunk{Type: domain.ChunkStart})
}

// SessionID announces the backend session id so the caller can persist it
// for resume.
func (s *Stream) SessionID(id string) {
	if id == "" {
		return
	}
	s.emit(domain.Chunk{Type: domain.ChunkSessionID, SessionID: id})
}

// StartSpan opens a text span. Opening an already-open span is a no-op.
func (s *Stream) StartSpan(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startSpanLocked(id)
}

func (s *Stream) startSpanLocked(id string) {
	if s.finished || s.openSpans[id] {
		return
	}
	s.openSpans[id] = true
	s.ch <- domain.Chunk{Type: domain.ChunkTextStart, SpanID: id}
}

// TextDelta appends text to a span, opening it lazily on first content.
// Empty deltas and deltas for ended spans are dropped.
func (s *Stream) TextDelta(id, text string) {
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.startSpanLocked(id)
	s.ch <- domain.Chunk{Type: domain.ChunkTextDelta, SpanID: id, Text: text}
}

// EndSpan closes a text span. Closing an unopened or closed span is a no-op.
func (s *Stream) EndSpan(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endSpanLocked(id)
}

func (s *Stream) endSpanLocked(id string) {
	if s.finished || !s.openSpans[id] {
		return
	}
	delete(s.openSpans, id)
	s.ch <- domain.Chunk{Type: domain.ChunkTextEnd, SpanID: id}
}

// ToolInputStart announces that a tool call's input is being assembled.
func (s *Stream) ToolInputStart(callID string) {
	s.emit(domain.Chunk{Type: domain.ChunkToolInputStart, ToolCallID: callID})
}

// ToolInputAvailable emits a tool call's complete name and input.
func (s *Stream) ToolInputAvailable(callID, name string, input json.RawMessage) {
	s.emit(domain.Chunk{Type: domain.ChunkToolInputAvailable, ToolCallID: callID, ToolName: name, ToolInput: input})
}

// ToolOutput emits a tool call's terminal success output. At most one
// terminal output chunk is emitted per call id.
func (s *Stream) ToolOutput(callID, output string) {
	s.emitToolTerminal(domain.Chunk{Type: domain.ChunkToolOutputAvailable, ToolCallID: callID, ToolOutput: output})
}

// ToolError emits a tool call's terminal error output. At most one terminal
// output chunk is emitted per call id.
func (s *Stream) ToolError(callID, output string) {
	s.emitToolTerminal(domain.Chunk{Type: domain.ChunkToolOutputError, ToolCallID: callID, ToolOutput: output})
}

func (s *Stream) emitToolTerminal(c domain.Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished || s.toolsDone[c.ToolCallID] {
		return
	}
	s.toolsDone[c.ToolCallID] = true
	s.ch <- c
}

// Question surfaces an interactive clarifying question.
func (s *Stream) Question(q domain.Question) {
	s.emit(domain.Chunk{Type: domain.ChunkAskUserQuestion, ToolCallID: q.ToolCallID, Question: &q})
}

// QuestionTimeout tells the caller a pending question expired so the UI can
// clear a stuck prompt.
func (s *Stream) QuestionTimeout(callID string) {
	s.emit(domain.Chunk{Type: domain.ChunkAskUserQuestionTimeout, ToolCallID: callID})
}

// TasksCreated announces tasks persisted from the turn's plan output.
func (s *Stream) TasksCreated(ids []string) {
	if len(ids) == 0 {
		return
	}
	s.emit(domain.Chunk{Type: domain.ChunkTasksCreated, TaskIDs: ids})
}

// GoalCreated announces a goal persisted from the turn's plan output.
func (s *Stream) GoalCreated(id string) {
	s.emit(domain.Chunk{Type: domain.ChunkGoalCreated, GoalID: id})
}

// Error emits a structured error chunk.
func (s *Stream) Error(kind domain.ErrorKind, msg string) {
	s.emit(domain.Chunk{Type: domain.ChunkError, ErrorKind: kind, ErrorMessage: msg})
}

// AuthError emits an auth failure carrying which backend needs re-auth.
func (s *Stream) AuthError(backend, msg string) {
	s.emit(domain.Chunk{Type: domain.ChunkAuthError, ErrorKind: domain.ErrorKindAuthRequired, Backend: backend, ErrorMessage: msg})
}

// Finish ends the turn: any open spans are closed first, then the finish
// chunk is emitted and the channel closed. Subsequent calls are no-ops.
func (s *Stream) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	for id := range s.openSpans {
		delete(s.openSpans, id)
		s.ch <- domain.Chunk{Type: domain.ChunkTextEnd, SpanID: id}
	}
	s.finished = true
	s.ch <- domain.Chunk{Type: domain.ChunkFinish}
	close(s.ch)
}

// Finished reports whether the terminal chunk was already emitted.
func (s *Stream) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

func (s *Stream) emit(c domain.Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.ch <- c
}
