// Package textstream adapts line-buffered text CLI backends to the chunk
// protocol. The backend is spawned per turn with coloring disabled, its
// output is sanitized, and every non-empty sanitized buffer becomes one
// text-delta.
package textstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ProjectAI00/relay/internal/adapter"
	"github.com/ProjectAI00/relay/internal/domain"
	"github.com/ProjectAI00/relay/internal/sanitize"
)

const readBufferSize = 4096

// fallbackDiagnostic keeps the UI from ending a turn with no response at all.
const fallbackDiagnostic = "The backend exited without producing any output. " +
	"It may have crashed on startup or rejected its arguments; try again or check the backend installation."

// colorlessEnv disables terminal coloring and interactive rendering in the
// spawned backend so the sanitizer sees mostly-plain text.
var colorlessEnv = []string{"NO_COLOR=1", "TERM=dumb", "CLICOLOR=0", "CLICOLOR_FORCE=0"}

// Config describes one text-stream backend.
// Fields are ordered to minimize memory padding.
type Config struct {
	ID           string   // Backend id used for registry lookup
	Command      string   // Binary name resolved via PATH
	Args         []string // Fixed leading arguments
	ModelFlag    string   // Flag for a model override (empty = unsupported)
	DefaultModel string   // Model used when the turn does not pick one
	ResumeFlag   string   // Flag for resuming a session (empty = unsupported)
	Env          []string // Extra environment entries
	AuthTokens   []string // Extra substrings marking auth failures
	RateTokens   []string // Extra substrings marking rate limiting
	PromptInline bool     // true = prompt passed as the final argument
}

// Adapter runs a text-stream backend.
// Fields are ordered to minimize memory padding.
type Adapter struct {
	handles *adapter.Handles
	logger  domain.Logger
	cfg     Config
}

var _ domain.BackendAdapter = (*Adapter)(nil)

// New creates a text-stream adapter for one backend.
func New(cfg Config, handles *adapter.Handles, logger domain.Logger) *Adapter {
	return &Adapter{cfg: cfg, handles: handles, logger: logger}
}

// ID returns the backend id.
func (a *Adapter) ID() string {
	return a.cfg.ID
}

// IsAvailable probes the PATH for the backend binary without spawning it.
func (a *Adapter) IsAvailable() bool {
	_, err := exec.LookPath(a.cfg.Command)
	return err == nil
}

// Cancel stops the live turn for a sub-conversation, if any.
func (a *Adapter) Cancel(subConversationID string) {
	a.handles.Cancel(subConversationID)
}

// Chat runs one turn against the backend subprocess.
func (a *Adapter) Chat(ctx context.Context, in domain.TurnInput) (<-chan domain.Chunk, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, domain.ErrEmptyPrompt
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := a.handles.Put(in.SubConversationID, cancel); err != nil {
		cancel()
		return nil, err
	}

	stream := adapter.NewStream()
	go a.run(runCtx, cancel, stream, in)
	return stream.Chunks(), nil
}

func (a *Adapter) run(ctx context.Context, cancel context.CancelFunc, stream *adapter.Stream, in domain.TurnInput) {
	defer func() {
		a.handles.Remove(in.SubConversationID)
		cancel()
	}()

	stream.Start()
	spanID := uuid.NewString()

	cmd := exec.CommandContext(ctx, a.cfg.Command, a.buildArgs(in)...)
	adapter.RunInOwnProcessGroup(cmd)
	if in.Cwd != "" {
		cmd.Dir = in.Cwd
	}
	cmd.Env = append(append(os.Environ(), colorlessEnv...), a.cfg.Env...)
	if !a.cfg.PromptInline {
		cmd.Stdin = strings.NewReader(in.Prompt)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stream.Error(domain.ErrorKindProcessCrash, fmt.Sprintf("create stdout pipe: %v", err))
		stream.Finish()
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stream.Error(domain.ErrorKindProcessCrash, fmt.Sprintf("create stderr pipe: %v", err))
		stream.Finish()
		return
	}

	if err := cmd.Start(); err != nil {
		a.logf(in.ConversationID, "spawn %s: %v", a.cfg.Command, err)
		if isNotInstalled(err) {
			stream.Error(domain.ErrorKindNotInstalled, fmt.Sprintf("backend %q is not installed", a.cfg.ID))
		} else {
			stream.Error(domain.ErrorKindProcessCrash, fmt.Sprintf("start backend: %v", err))
		}
		stream.Finish()
		return
	}

	// Unblock the pipe readers on cancellation even if a descendant of
	// the backend survives the group signal and keeps the write ends open.
	readersDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = stdout.Close()
			_ = stderr.Close()
		case <-readersDone:
		}
	}()

	var outAll, errAll accumulator
	emitted := false
	var emitMu sync.Mutex

	g := new(errgroup.Group)
	g.Go(func() error {
		return readInto(stdout, &outAll, func(buf string) {
			clean := sanitize.Clean(buf)
			if clean == "" {
				return
			}
			emitMu.Lock()
			emitted = true
			emitMu.Unlock()
			stream.TextDelta(spanID, clean)
		})
	})
	g.Go(func() error {
		// stderr is accumulated for classification but not streamed; most
		// CLIs put progress noise there.
		return readInto(stderr, &errAll, nil)
	})

	readErr := g.Wait()
	close(readersDone)
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		// User cancellation wins over whatever the process was doing.
		stream.Finish()
		return
	}

	if waitErr != nil {
		combined := errAll.String() + "\n" + outAll.String()
		kind, msg := classify(&a.cfg, combined, waitErr)
		a.logf(in.ConversationID, "backend %s failed: %s: %s", a.cfg.ID, kind, msg)
		stream.EndSpan(spanID)
		if kind == domain.ErrorKindAuthRequired {
			stream.AuthError(a.cfg.ID, msg)
		} else {
			stream.Error(kind, msg)
		}
		stream.Finish()
		return
	}

	if readErr != nil {
		stream.EndSpan(spanID)
		stream.Error(domain.ErrorKindProtocolError, fmt.Sprintf("read backend output: %v", readErr))
		stream.Finish()
		return
	}

	emitMu.Lock()
	sawOutput := emitted
	emitMu.Unlock()
	if !sawOutput {
		stream.TextDelta(spanID, fallbackDiagnostic)
	}
	stream.Finish()
}

// buildArgs assembles the backend argv for a turn.
func (a *Adapter) buildArgs(in domain.TurnInput) []string {
	args := append([]string{}, a.cfg.Args...)
	model := in.Model
	if model == "" {
		model = a.cfg.DefaultModel
	}
	if model != "" && a.cfg.ModelFlag != "" {
		args = append(args, a.cfg.ModelFlag, model)
	}
	if in.SessionID != "" && a.cfg.ResumeFlag != "" {
		args = append(args, a.cfg.ResumeFlag, in.SessionID)
	}
	if a.cfg.PromptInline {
		args = append(args, in.Prompt)
	}
	return args
}

func (a *Adapter) logf(conversationID, format string, args ...any) {
	if a.logger == nil {
		return
	}
	a.logger.Warn(conversationID, "textstream", fmt.Sprintf(format, args...))
}

// accumulator is a size-capped output collector used for error
// classification after exit.
type accumulator struct {
	b strings.Builder
}

const accumulatorCap = 256 * 1024

func (a *accumulator) add(s string) {
	if a.b.Len() >= accumulatorCap {
		return
	}
	a.b.WriteString(s)
}

func (a *accumulator) String() string {
	return a.b.String()
}

// readInto drains r in fixed-size buffers, accumulating everything and
// invoking emit per non-empty read.
func readInto(r io.Reader, acc *accumulator, emit func(string)) error {
	buf := make([]byte, readBufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			s := string(buf[:n])
			acc.add(s)
			if emit != nil {
				emit(s)
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// isNotInstalled matches the spawn failure signature of a missing binary.
func isNotInstalled(err error) bool {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return errors.Is(execErr.Err, exec.ErrNotFound)
	}
	return errors.Is(err, exec.ErrNotFound)
}
