// Package acp adapts backends that speak the Agent Client Protocol over a
// subprocess's stdin/stdout. One turn runs one agent process and one
// prompt; the session id is surfaced so later turns can resume.
package acp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	acpsdk "github.com/coder/acp-go-sdk"
	"github.com/google/uuid"

	"github.com/ProjectAI00/relay/internal/adapter"
	"github.com/ProjectAI00/relay/internal/domain"
)

const (
	defaultInactivityTimeout = 10 * time.Minute
	agentQuestionTimeout     = 60 * time.Second
	interactiveQuestionLimit = 10 * time.Minute
)

// Config describes one ACP wrapper agent.
// Fields are ordered to minimize memory padding.
type Config struct {
	InactivityTimeout time.Duration
	ID                string
	Command           string
	Args              []string
	ModelFlag         string
	DefaultModel      string
	ResumeFlag        string
	Env               []string
}

// Adapter runs an ACP agent subprocess per turn.
// Fields are ordered to minimize memory padding.
type Adapter struct {
	handles  *adapter.Handles
	resolver *adapter.AskUserResolver
	logger   domain.Logger
	cfg      Config
}

var _ domain.BackendAdapter = (*Adapter)(nil)

// New creates an ACP adapter for one backend.
func New(cfg Config, handles *adapter.Handles, resolver *adapter.AskUserResolver, logger domain.Logger) *Adapter {
	if cfg.InactivityTimeout <= 0 {
		cfg.InactivityTimeout = defaultInactivityTimeout
	}
	return &Adapter{cfg: cfg, handles: handles, resolver: resolver, logger: logger}
}

// ID returns the backend id.
func (a *Adapter) ID() string {
	return a.cfg.ID
}

// IsAvailable probes the PATH for the agent binary without spawning it.
func (a *Adapter) IsAvailable() bool {
	_, err := exec.LookPath(a.cfg.Command)
	return err == nil
}

// Cancel stops the live turn for a sub-conversation, if any.
func (a *Adapter) Cancel(subConversationID string) {
	a.handles.Cancel(subConversationID)
}

// Chat runs one prompt turn over a fresh agent process.
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

	// #nosec G204 - command comes from trusted backend configuration
	cmd := exec.CommandContext(ctx, a.cfg.Command, args...)
	adapter.RunInOwnProcessGroup(cmd)
	if in.Cwd != "" {
		cmd.Dir = in.Cwd
	}
	cmd.Env = append(os.Environ(), a.cfg.Env...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		stream.Error(domain.ErrorKindProcessCrash, fmt.Sprintf("create stdin pipe: %v", err))
		stream.Finish()
		return
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stream.Error(domain.ErrorKindProcessCrash, fmt.Sprintf("create stdout pipe: %v", err))
		stream.Finish()
		return
	}

	if startErr := cmd.Start(); startErr != nil {
		if isNotInstalled(startErr) {
			stream.Error(domain.ErrorKindNotInstalled, fmt.Sprintf("backend %q is not installed", a.cfg.ID))
		} else {
			stream.Error(domain.ErrorKindProcessCrash, fmt.Sprintf("start agent process: %v", startErr))
		}
		stream.Finish()
		return
	}
	defer func() { _ = cmd.Wait() }()

	client := &turnClient{
		stream:   stream,
		resolver: a.resolver,
		mode:     in.Mode,
	}
	conn := acpsdk.NewClientSideConnection(client, stdin, stdout)

	watchdog := time.AfterFunc(a.cfg.InactivityTimeout, func() {
		stream.Error(domain.ErrorKindTimeout, fmt.Sprintf("no agent activity for %s", a.cfg.InactivityTimeout))
		cancel()
	})
	defer watchdog.Stop()
	client.touch = func() { watchdog.Reset(a.cfg.InactivityTimeout) }

	if _, initErr := conn.Initialize(ctx, acpsdk.InitializeRequest{
		ProtocolVersion: acpsdk.ProtocolVersionNumber,
		ClientCapabilities: acpsdk.ClientCapabilities{
			Fs:       acpsdk.FileSystemCapability{ReadTextFile: false, WriteTextFile: false},
			Terminal: false,
		},
	}); initErr != nil {
		a.failProtocol(ctx, stream, "initialize", initErr)
		return
	}

	session, err := conn.NewSession(ctx, acpsdk.NewSessionRequest{
		Cwd:        in.Cwd,
		McpServers: []acpsdk.McpServer{},
	})
	if err != nil {
		a.failProtocol(ctx, stream, "new session", err)
		return
	}
	stream.SessionID(string(session.SessionId))

	resp, err := conn.Prompt(ctx, acpsdk.PromptRequest{
		SessionId: session.SessionId,
		Prompt:    []acpsdk.ContentBlock{acpsdk.TextBlock(in.Prompt)},
	})
	if err != nil {
		_ = conn.Cancel(context.Background(), acpsdk.CancelNotification{SessionId: session.SessionId})
		a.failProtocol(ctx, stream, "prompt", err)
		return
	}
	if resp.StopReason != acpsdk.StopReasonEndTurn {
		a.logf(in.ConversationID, "turn stopped with reason %q", resp.StopReason)
	}
	stream.Finish()
}

// failProtocol ends the stream after a connection-level failure. A turn
// the caller cancelled finishes without an error chunk, and a watchdog
// timeout already put its own error on the stream.
func (a *Adapter) failProtocol(ctx context.Context, stream *adapter.Stream, stage string, err error) {
	if ctx.Err() == nil {
		stream.Error(domain.ErrorKindProtocolError, fmt.Sprintf("acp %s: %v", stage, err))
	}
	stream.Finish()
}

func (a *Adapter) logf(conversationID, format string, args ...any) {
	if a.logger == nil {
		return
	}
	a.logger.Warn(conversationID, "acp", fmt.Sprintf(format, args...))
}

func isNotInstalled(err error) bool {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return errors.Is(execErr.Err, exec.ErrNotFound)
	}
	return errors.Is(err, exec.ErrNotFound)
}

// turnClient receives session updates and permission requests for one turn.
// Fields are ordered to minimize memory padding.
type turnClient struct {
	stream      *adapter.Stream
	resolver    *adapter.AskUserResolver
	touch       func()
	messageSpan string
	thoughtSpan string
	mode        domain.Mode
}

var _ acpsdk.Client = (*turnClient)(nil)

func (c *turnClient) SessionUpdate(_ context.Context, params acpsdk.SessionNotification) error {
	if c.touch != nil {
		c.touch()
	}
	update := params.Update
	switch {
	case update.AgentMessageChunk != nil:
		if update.AgentMessageChunk.Content.Text != nil {
			if c.messageSpan == "" {
				c.messageSpan = uuid.NewString()
			}
			c.stream.TextDelta(c.messageSpan, update.AgentMessageChunk.Content.Text.Text)
		}
	case update.AgentThoughtChunk != nil:
		if update.AgentThoughtChunk.Content.Text != nil {
			if c.thoughtSpan == "" {
				c.thoughtSpan = uuid.NewString()
			}
			c.stream.TextDelta(c.thoughtSpan, update.AgentThoughtChunk.Content.Text.Text)
		}
	case update.ToolCall != nil:
		tc := update.ToolCall
		callID := string(tc.ToolCallId)
		if callID == "" {
			return nil
		}
		c.stream.ToolInputStart(callID)
		c.stream.ToolInputAvailable(callID, tc.Title, rawField(tc, "rawInput"))
	case update.ToolCallUpdate != nil:
		u := update.ToolCallUpdate
		callID := string(u.ToolCallId)
		if callID == "" || u.Status == nil {
			return nil
		}
		switch string(*u.Status) {
		case "completed":
			c.stream.ToolOutput(callID, flattenRaw(rawField(u, "rawOutput")))
		case "failed":
			c.stream.ToolError(callID, flattenRaw(rawField(u, "rawOutput")))
		}
	}
	return nil
}

func (c *turnClient) RequestPermission(ctx context.Context, params acpsdk.RequestPermissionRequest) (acpsdk.RequestPermissionResponse, error) {
	if c.touch != nil {
		c.touch()
	}

	callID := string(params.ToolCall.ToolCallId)
	if callID == "" {
		callID = uuid.NewString()
	}

	prompt := ""
	if params.ToolCall.Title != nil {
		prompt = *params.ToolCall.Title
	}
	options := make([]string, 0, len(params.Options))
	for _, opt := range params.Options {
		options = append(options, string(opt.OptionId))
	}

	timeout := c.questionTimeout()
	c.stream.Question(domain.Question{
		ToolCallID: callID,
		Prompt:     prompt,
		Options:    options,
		Timeout:    timeout,
	})

	ans, waitErr := c.resolver.Wait(ctx, callID, timeout)
	if waitErr != nil {
		return cancelledPermission(), nil
	}
	if ans.TimedOut {
		c.stream.QuestionTimeout(callID)
		return cancelledPermission(), nil
	}

	chosen := ""
	if len(ans.Answers) > 0 {
		chosen = ans.Answers[0]
	}
	for _, opt := range params.Options {
		if string(opt.OptionId) == chosen || opt.Name == chosen {
			if c.touch != nil {
				c.touch()
			}
			return acpsdk.RequestPermissionResponse{
				Outcome: acpsdk.RequestPermissionOutcome{
					Selected: &acpsdk.RequestPermissionOutcomeSelected{
						OptionId: opt.OptionId,
						Outcome:  "selected",
					},
				},
			}, nil
		}
	}
	return cancelledPermission(), nil
}

// questionTimeout bounds how long a turn may block on a question. Agent
// turns fail fast; interactive modes wait for a human.
func (c *turnClient) questionTimeout() time.Duration {
	if c.mode == domain.ModeAgent {
		return agentQuestionTimeout
	}
	return interactiveQuestionLimit
}

func (c *turnClient) WriteTextFile(_ context.Context, _ acpsdk.WriteTextFileRequest) (acpsdk.WriteTextFileResponse, error) {
	return acpsdk.WriteTextFileResponse{}, acpsdk.NewMethodNotFound(acpsdk.ClientMethodFsWriteTextFile)
}

func (c *turnClient) ReadTextFile(_ context.Context, _ acpsdk.ReadTextFileRequest) (acpsdk.ReadTextFileResponse, error) {
	return acpsdk.ReadTextFileResponse{}, acpsdk.NewMethodNotFound(acpsdk.ClientMethodFsReadTextFile)
}

func (c *turnClient) CreateTerminal(_ context.Context, _ acpsdk.CreateTerminalRequest) (acpsdk.CreateTerminalResponse, error) {
	return acpsdk.CreateTerminalResponse{}, acpsdk.NewMethodNotFound(acpsdk.ClientMethodTerminalCreate)
}

func (c *turnClient) TerminalOutput(_ context.Context, _ acpsdk.TerminalOutputRequest) (acpsdk.TerminalOutputResponse, error) {
	return acpsdk.TerminalOutputResponse{}, acpsdk.NewMethodNotFound(acpsdk.ClientMethodTerminalOutput)
}

func (c *turnClient) ReleaseTerminal(_ context.Context, _ acpsdk.ReleaseTerminalRequest) (acpsdk.ReleaseTerminalResponse, error) {
	return acpsdk.ReleaseTerminalResponse{}, acpsdk.NewMethodNotFound(acpsdk.ClientMethodTerminalRelease)
}

func (c *turnClient) WaitForTerminalExit(_ context.Context, _ acpsdk.WaitForTerminalExitRequest) (acpsdk.WaitForTerminalExitResponse, error) {
	return acpsdk.WaitForTerminalExitResponse{}, acpsdk.NewMethodNotFound(acpsdk.ClientMethodTerminalWaitForExit)
}

func (c *turnClient) KillTerminalCommand(_ context.Context, _ acpsdk.KillTerminalCommandRequest) (acpsdk.KillTerminalCommandResponse, error) {
	return acpsdk.KillTerminalCommandResponse{}, acpsdk.NewMethodNotFound(acpsdk.ClientMethodTerminalKill)
}

// rawField pulls one raw JSON field out of an SDK struct by its wire name,
// so optional payload fields do not pin this package to SDK struct shapes.
func rawField(v any, name string) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m[name]
}

// flattenRaw renders a raw JSON output as display text, unquoting bare
// strings.
func flattenRaw(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func cancelledPermission() acpsdk.RequestPermissionResponse {
	return acpsdk.RequestPermissionResponse{
		Outcome: acpsdk.RequestPermissionOutcome{
			Cancelled: &acpsdk.RequestPermissionOutcomeCancelled{
				Outcome: "cancelled",
			},
		},
	}
}
