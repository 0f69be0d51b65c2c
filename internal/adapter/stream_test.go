package adapter

import (
	"testing"

	"github.com/ProjectAI00/relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(s *Stream) []domain.Chunk {
	var chunks []domain.Chunk
	for c := range s.Chunks() {
		chunks = append(chunks, c)
	}
	return chunks
}

func TestStream_SpanLifecycle(t *testing.T) {
	s := NewStream()
	s.Start()
	s.TextDelta("sp1", "hello")
	s.TextDelta("sp1", " world")
	s.EndSpan("sp1")
	s.Finish()

	chunks := drain(s)
	types := make([]domain.ChunkType, 0, len(chunks))
	for _, c := range chunks {
		types = append(types, c.Type)
	}
	assert.Equal(t, []domain.ChunkType{
		domain.ChunkStart,
		domain.ChunkTextStart,
		domain.ChunkTextDelta,
		domain.ChunkTextDelta,
		domain.ChunkTextEnd,
		domain.ChunkFinish,
	}, types)
}

func TestStream_FinishClosesOpenSpans(t *testing.T) {
	s := NewStream()
	s.TextDelta("a", "x")
	s.TextDelta("b", "y")
	s.Finish()

	chunks := drain(s)

	// Every text-start has exactly one matching text-end before finish.
	starts := map[string]int{}
	ends := map[string]int{}
	finishAt := -1
	for i, c := range chunks {
		switch c.Type {
		case domain.ChunkTextStart:
			starts[c.SpanID]++
		case domain.ChunkTextEnd:
			ends[c.SpanID]++
			assert.Less(t, i, len(chunks)-1, "text-end after finish")
		case domain.ChunkFinish:
			finishAt = i
		}
	}
	require.Equal(t, len(chunks)-1, finishAt, "finish must be last")
	assert.Equal(t, starts, ends)
}

func TestStream_ExactlyOneFinish(t *testing.T) {
	s := NewStream()
	s.Finish()
	s.Finish() // second finish is a no-op
	s.Error(domain.ErrorKindProcessCrash, "late error is dropped")

	chunks := drain(s)
	require.Len(t, chunks, 1)
	assert.Equal(t, domain.ChunkFinish, chunks[0].Type)
}

func TestStream_NoDeltaAfterEnd(t *testing.T) {
	s := NewStream()
	s.TextDelta("sp", "before")
	s.EndSpan("sp")
	s.TextDelta("sp", "after") // reopens a new start; spec allows new spans, not deltas on closed ones
	s.Finish()

	chunks := drain(s)
	// After the first text-end for "sp" the next "sp" chunk must be a start.
	sawEnd := false
	for _, c := range chunks {
		if c.SpanID != "sp" {
			continue
		}
		if sawEnd {
			assert.Equal(t, domain.ChunkTextStart, c.Type)
			break
		}
		if c.Type == domain.ChunkTextEnd {
			sawEnd = true
		}
	}
}

func TestStream_ToolTerminalOnce(t *testing.T) {
	s := NewStream()
	s.ToolInputStart("t1")
	s.ToolInputAvailable("t1", "read_file", []byte(`{"path":"a.go"}`))
	s.ToolOutput("t1", "contents")
	s.ToolError("t1", "late failure is dropped")
	s.Finish()

	chunks := drain(s)
	terminal := 0
	for _, c := range chunks {
		if c.Type == domain.ChunkToolOutputAvailable || c.Type == domain.ChunkToolOutputError {
			terminal++
		}
	}
	assert.Equal(t, 1, terminal)
}

func TestStream_AuthErrorCarriesBackend(t *testing.T) {
	s := NewStream()
	s.AuthError("claude", "not logged in")
	s.Finish()

	chunks := drain(s)
	require.Len(t, chunks, 2)
	assert.Equal(t, domain.ChunkAuthError, chunks[0].Type)
	assert.Equal(t, "claude", chunks[0].Backend)
	assert.Equal(t, domain.ErrorKindAuthRequired, chunks[0].ErrorKind)
}

func TestStream_EmptyDeltaDropped(t *testing.T) {
	s := NewStream()
	s.TextDelta("sp", "")
	s.Finish()

	chunks := drain(s)
	require.Len(t, chunks, 1)
	assert.Equal(t, domain.ChunkFinish, chunks[0].Type)
}
