// Package jsonline adapts CLI backends that emit one JSON message per
// stdout line. Unparseable trailing fragments are held as a prefix for the
// next read rather than discarded; unrecognized message types are ignored
// for forward compatibility.
package jsonline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ProjectAI00/relay/internal/adapter"
	"github.com/ProjectAI00/relay/internal/domain"
)

const readBufferSize = 8192

var colorlessEnv = []string{"NO_COLOR=1", "TERM=dumb", "CLICOLOR=0"}

// Decoder translates one complete backend JSON line into emissions on the
// turn's Events. Implementations must silently ignore unknown shapes.
type Decoder interface {
	DecodeLine(line []byte, ev *Events)
}

// Config describes one JSON-line backend.
// Fields are ordered to minimize memory padding.
type Config struct {
	Decoder      Decoder
	ID           string   // Backend id used for registry lookup
	Command      string   // Binary name resolved via PATH
	Args         []string // Fixed leading arguments
	ModelFlag    string   // Flag for a model override (empty = unsupported)
	DefaultModel string   // Model used when the turn does not pick one
	ResumeFlag   string   // Flag for resuming a session (empty = unsupported)
	Env          []string // Extra environment entries
	AuthTokens   []string // Extra substrings marking auth failures in stderr
}

// Adapter runs a JSON-line backend.
// Fields are ordered to minimize memory padding.
type Adapter struct {
	handles *adapter.Handles
	logger  domain.Logger
	cfg     Config
}

var _ domain.BackendAdapter = (*Adapter)(nil)

// New creates a JSON-line adapter for one backend.
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
	ev := &Events{stream: stream, spanID: uuid.NewString()}

	cmd := exec.CommandContext(ctx, a.cfg.Command, a.buildArgs(in)...)
	adapter.RunInOwnProcessGroup(cmd)
	if in.Cwd != "" {
		cmd.Dir = in.Cwd
	}
	cmd.Env = append(append(os.Environ(), colorlessEnv...), a.cfg.Env...)

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

	var stderrAll strings.Builder
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.Go(func() error {
		return a.readLines(stdout, ev)
	})
	g.Go(func() error {
		buf := make([]byte, readBufferSize)
		for {
			n, rErr := stderr.Read(buf)
			if n > 0 {
				mu.Lock()
				if stderrAll.Len() < 64*1024 {
					stderrAll.Write(buf[:n])
				}
				mu.Unlock()
			}
			if rErr != nil {
				if rErr == io.EOF {
					return nil
				}
				return rErr
			}
		}
	})

	_ = g.Wait()
	close(readersDone)
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		stream.Finish()
		return
	}

	mu.Lock()
	errOut := stderrAll.String()
	mu.Unlock()

	if waitErr != nil {
		a.logf(in.ConversationID, "backend %s exited: %v", a.cfg.ID, waitErr)
		stream.EndSpan(ev.spanID)
		a.emitFailure(stream, ev, errOut, waitErr)
		stream.Finish()
		return
	}

	if ev.resultErr != "" {
		stream.EndSpan(ev.spanID)
		stream.Error(domain.ErrorKindProcessCrash, ev.resultErr)
	} else if !ev.emitted {
		stream.TextDelta(ev.spanID, "The backend finished without producing any output.")
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
	return append(args, in.Prompt)
}

// readLines buffers stdout at the line level. A trailing fragment with no
// newline yet is carried as the prefix for the next read.
func (a *Adapter) readLines(r io.Reader, ev *Events) error {
	buf := make([]byte, readBufferSize)
	partial := ""
	for {
		n, err := r.Read(buf)
		if n > 0 {
			data := partial + string(buf[:n])
			lines := strings.Split(data, "\n")
			partial = lines[len(lines)-1]
			for _, line := range lines[:len(lines)-1] {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				a.cfg.Decoder.DecodeLine([]byte(line), ev)
			}
		}
		if err != nil {
			if line := strings.TrimSpace(partial); line != "" {
				a.cfg.Decoder.DecodeLine([]byte(line), ev)
			}
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// emitFailure classifies a non-zero exit. The decoder's structured error,
// when present, beats stderr heuristics.
func (a *Adapter) emitFailure(stream *adapter.Stream, ev *Events, stderrOut string, waitErr error) {
	msg := ev.resultErr
	if msg == "" {
		msg = strings.TrimSpace(stderrOut)
	}
	if msg == "" {
		msg = fmt.Sprintf("backend exited: %v", waitErr)
	}
	if len(msg) > 2000 {
		// Cut on a rune boundary so the message stays valid UTF-8.
		cut := 2000
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "…"
	}

	lower := strings.ToLower(msg)
	tokens := append([]string{"unauthorized", "not logged in", "api key", "authentication", "invalid credentials"}, a.cfg.AuthTokens...)
	for _, tok := range tokens {
		if tok != "" && strings.Contains(lower, strings.ToLower(tok)) {
			stream.AuthError(a.cfg.ID, msg)
			return
		}
	}
	if strings.Contains(lower, "rate limit") || strings.Contains(lower, "too many requests") || strings.Contains(lower, "429") {
		stream.Error(domain.ErrorKindRateLimited, msg)
		return
	}
	stream.Error(domain.ErrorKindProcessCrash, msg)
}

func (a *Adapter) logf(conversationID, format string, args ...any) {
	if a.logger == nil {
		return
	}
	a.logger.Warn(conversationID, "jsonline", fmt.Sprintf(format, args...))
}

func isNotInstalled(err error) bool {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return errors.Is(execErr.Err, exec.ErrNotFound)
	}
	return errors.Is(err, exec.ErrNotFound)
}
