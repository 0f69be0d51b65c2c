package textstream

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/ProjectAI00/relay/internal/adapter"
	"github.com/ProjectAI00/relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shConfig runs the given shell script as the backend binary.
func shConfig(id, script string) Config {
	return Config{
		ID:      id,
		Command: "sh",
		Args:    []string{"-c", script},
	}
}

func newTestAdapter(cfg Config) *Adapter {
	return New(cfg, adapter.NewHandles(), nil)
}

func collect(t *testing.T, ch <-chan domain.Chunk) []domain.Chunk {
	t.Helper()
	var chunks []domain.Chunk
	deadline := time.After(10 * time.Second)
	for {
		select {
		case c, ok := <-ch:
			if !ok {
				return chunks
			}
			chunks = append(chunks, c)
		case <-deadline:
			t.Fatal("stream did not terminate")
		}
	}
}

func turnInput(backend string) domain.TurnInput {
	return domain.TurnInput{
		ConversationID:    "conv1",
		SubConversationID: "sub1",
		Prompt:            "do the thing",
		Backend:           backend,
		Mode:              domain.ModeAgent,
	}
}

func countType(chunks []domain.Chunk, ct domain.ChunkType) int {
	n := 0
	for _, c := range chunks {
		if c.Type == ct {
			n++
		}
	}
	return n
}

func TestAdapter_Chat_StreamsOutput(t *testing.T) {
	a := newTestAdapter(shConfig("fake", `printf 'hello from backend\n'`))

	ch, err := a.Chat(context.Background(), turnInput("fake"))
	require.NoError(t, err)
	chunks := collect(t, ch)

	assert.Equal(t, 1, countType(chunks, domain.ChunkStart))
	assert.Equal(t, 1, countType(chunks, domain.ChunkFinish))
	assert.Equal(t, domain.ChunkFinish, chunks[len(chunks)-1].Type)

	var text strings.Builder
	for _, c := range chunks {
		if c.Type == domain.ChunkTextDelta {
			text.WriteString(c.Text)
		}
	}
	assert.Contains(t, text.String(), "hello from backend")

	// Span invariant: one start, one end, end before finish.
	assert.Equal(t, 1, countType(chunks, domain.ChunkTextStart))
	assert.Equal(t, 1, countType(chunks, domain.ChunkTextEnd))
}

func TestAdapter_Chat_AuthErrorFromStderr(t *testing.T) {
	a := newTestAdapter(shConfig("claude", `echo 'Error: not logged in' >&2; exit 1`))

	ch, err := a.Chat(context.Background(), turnInput("claude"))
	require.NoError(t, err)
	chunks := collect(t, ch)

	require.Equal(t, 1, countType(chunks, domain.ChunkAuthError))
	assert.Equal(t, 0, countType(chunks, domain.ChunkError))
	for _, c := range chunks {
		if c.Type == domain.ChunkAuthError {
			assert.Equal(t, "claude", c.Backend)
			assert.Contains(t, c.ErrorMessage, "not logged in")
		}
	}
	assert.Equal(t, 1, countType(chunks, domain.ChunkFinish))
}

func TestAdapter_Chat_GenericErrorOnCrash(t *testing.T) {
	a := newTestAdapter(shConfig("fake", `echo 'segfault somewhere' >&2; exit 2`))

	ch, err := a.Chat(context.Background(), turnInput("fake"))
	require.NoError(t, err)
	chunks := collect(t, ch)

	require.Equal(t, 1, countType(chunks, domain.ChunkError))
	for _, c := range chunks {
		if c.Type == domain.ChunkError {
			assert.Equal(t, domain.ErrorKindProcessCrash, c.ErrorKind)
		}
	}
}

func TestAdapter_Chat_FallbackOnSilentExit(t *testing.T) {
	a := newTestAdapter(shConfig("fake", `exit 0`))

	ch, err := a.Chat(context.Background(), turnInput("fake"))
	require.NoError(t, err)
	chunks := collect(t, ch)

	var text strings.Builder
	for _, c := range chunks {
		if c.Type == domain.ChunkTextDelta {
			text.WriteString(c.Text)
		}
	}
	assert.NotEmpty(t, text.String(), "a silent exit must still produce a response")
	assert.Equal(t, 1, countType(chunks, domain.ChunkFinish))
}

func TestAdapter_Chat_NotInstalled(t *testing.T) {
	a := newTestAdapter(Config{ID: "ghost", Command: "relay-test-no-such-binary"})

	assert.False(t, a.IsAvailable())

	ch, err := a.Chat(context.Background(), turnInput("ghost"))
	require.NoError(t, err)
	chunks := collect(t, ch)

	require.Equal(t, 1, countType(chunks, domain.ChunkError))
	for _, c := range chunks {
		if c.Type == domain.ChunkError {
			assert.Equal(t, domain.ErrorKindNotInstalled, c.ErrorKind)
		}
	}
}

func TestAdapter_Chat_CancelStopsStream(t *testing.T) {
	a := newTestAdapter(shConfig("slow", `sleep 30`))

	ch, err := a.Chat(context.Background(), turnInput("slow"))
	require.NoError(t, err)

	// Give the process a moment to start, then cancel twice.
	time.Sleep(100 * time.Millisecond)
	a.Cancel("sub1")
	a.Cancel("sub1") // second cancel is a no-op

	start := time.Now()
	chunks := collect(t, ch)
	assert.Less(t, time.Since(start), 5*time.Second, "cancel must terminate promptly")
	assert.Equal(t, 1, countType(chunks, domain.ChunkFinish))
}

func TestAdapter_Chat_CancelKillsDescendants(t *testing.T) {
	// The backend forks a child that inherits stdout. Cancellation must
	// end the stream without waiting for that child's own exit.
	a := newTestAdapter(shConfig("forky", `sleep 30 & wait`))

	ch, err := a.Chat(context.Background(), turnInput("forky"))
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	a.Cancel("sub1")

	start := time.Now()
	chunks := collect(t, ch)
	assert.Less(t, time.Since(start), 5*time.Second, "cancel must not wait for the backend's children")
	assert.Equal(t, 1, countType(chunks, domain.ChunkFinish))
}

func TestAdapter_Chat_PromptOnStdinWhenNotInline(t *testing.T) {
	a := newTestAdapter(Config{ID: "echo", Command: "cat"})

	ch, err := a.Chat(context.Background(), turnInput("echo"))
	require.NoError(t, err)
	chunks := collect(t, ch)

	var text strings.Builder
	for _, c := range chunks {
		if c.Type == domain.ChunkTextDelta {
			text.WriteString(c.Text)
		}
	}
	assert.Contains(t, text.String(), "do the thing")
}

func TestAdapter_Chat_RejectsConcurrentTurn(t *testing.T) {
	a := newTestAdapter(shConfig("slow", `sleep 30`))

	ch, err := a.Chat(context.Background(), turnInput("slow"))
	require.NoError(t, err)

	_, err = a.Chat(context.Background(), turnInput("slow"))
	assert.ErrorIs(t, err, domain.ErrTurnInFlight)

	a.Cancel("sub1")
	collect(t, ch)
}

func TestAdapter_Chat_EmptyPrompt(t *testing.T) {
	a := newTestAdapter(shConfig("fake", `true`))
	in := turnInput("fake")
	in.Prompt = "   "
	_, err := a.Chat(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrEmptyPrompt)
}

func TestAdapter_BuildArgs(t *testing.T) {
	a := newTestAdapter(Config{
		ID:           "gemini",
		Command:      "gemini",
		Args:         []string{"-p"},
		ModelFlag:    "-m",
		PromptInline: true,
	})
	in := turnInput("gemini")
	in.Model = "gemini-2.5-pro"

	args := a.buildArgs(in)
	assert.Equal(t, []string{"-p", "-m", "gemini-2.5-pro", "do the thing"}, args)
}

func TestAdapter_BuildArgs_DefaultModel(t *testing.T) {
	a := newTestAdapter(Config{
		ID:           "gemini",
		Command:      "gemini",
		ModelFlag:    "-m",
		DefaultModel: "gemini-2.5-pro",
		PromptInline: true,
	})

	in := turnInput("gemini")
	assert.Equal(t, []string{"-m", "gemini-2.5-pro", "do the thing"}, a.buildArgs(in))

	in.Model = "gemini-2.5-flash"
	assert.Equal(t, []string{"-m", "gemini-2.5-flash", "do the thing"}, a.buildArgs(in))
}

func TestClassify(t *testing.T) {
	cfg := &Config{}
	tests := []struct {
		name   string
		output string
		want   domain.ErrorKind
	}{
		{"auth by api key", "Invalid API key provided", domain.ErrorKindAuthRequired},
		{"auth by login", "You are not logged in. Run login first.", domain.ErrorKindAuthRequired},
		{"rate limited", "429 Too Many Requests", domain.ErrorKindRateLimited},
		{"overloaded", "upstream service unavailable", domain.ErrorKindOverloaded},
		{"crash", "panic: runtime error", domain.ErrorKindProcessCrash},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, _ := classify(cfg, tt.output, nil)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestClassify_TruncationKeepsValidUTF8(t *testing.T) {
	// A multibyte rune straddling the cap must be dropped whole, not split.
	output := strings.Repeat("a", messageCap-1) + "日本語"

	_, msg := classify(&Config{}, output, nil)
	assert.True(t, utf8.ValidString(msg))
	assert.True(t, strings.HasSuffix(msg, "…"))
	assert.LessOrEqual(t, len(msg), messageCap+len("…"))
}
