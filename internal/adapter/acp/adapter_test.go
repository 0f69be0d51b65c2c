package acp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	acpsdk "github.com/coder/acp-go-sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectAI00/relay/internal/adapter"
	"github.com/ProjectAI00/relay/internal/domain"
)

func permissionRequestParams() acpsdk.RequestPermissionRequest {
	title := "Run ls -la"
	return acpsdk.RequestPermissionRequest{
		SessionId: acpsdk.SessionId("session-1"),
		ToolCall: acpsdk.RequestPermissionToolCall{
			ToolCallId: acpsdk.ToolCallId("tool-1"),
			Title:      &title,
		},
		Options: []acpsdk.PermissionOption{
			{
				OptionId: acpsdk.PermissionOptionId("opt-allow"),
				Name:     "Allow once",
				Kind:     acpsdk.PermissionOptionKind("allow_once"),
			},
			{
				OptionId: acpsdk.PermissionOptionId("opt-reject"),
				Name:     "Reject",
				Kind:     acpsdk.PermissionOptionKind("reject_once"),
			},
		},
	}
}

func resolveWhenPending(t *testing.T, resolver *adapter.AskUserResolver, callID string, ans adapter.Answer) {
	t.Helper()
	go func() {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if resolver.Pending(callID) {
				_ = resolver.Resolve(callID, ans)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()
}

func TestTurnClient_RequestPermission_Selected(t *testing.T) {
	t.Parallel()

	resolver := adapter.NewAskUserResolver()
	client := &turnClient{
		stream:   adapter.NewStream(),
		resolver: resolver,
		mode:     domain.ModeAsk,
	}

	resolveWhenPending(t, resolver, "tool-1", adapter.Answer{Answers: []string{"opt-allow"}})

	resp, err := client.RequestPermission(context.Background(), permissionRequestParams())
	require.NoError(t, err)
	require.NotNil(t, resp.Outcome.Selected)
	assert.Equal(t, "opt-allow", string(resp.Outcome.Selected.OptionId))
	assert.Equal(t, "selected", resp.Outcome.Selected.Outcome)

	client.stream.Finish()
	var q *domain.Chunk
	for c := range client.stream.Chunks() {
		if c.Type == domain.ChunkAskUserQuestion {
			cc := c
			q = &cc
		}
	}
	require.NotNil(t, q)
	require.NotNil(t, q.Question)
	assert.Equal(t, "tool-1", q.Question.ToolCallID)
	assert.Equal(t, "Run ls -la", q.Question.Prompt)
	assert.Equal(t, []string{"opt-allow", "opt-reject"}, q.Question.Options)
}

func TestTurnClient_RequestPermission_SelectedByName(t *testing.T) {
	t.Parallel()

	resolver := adapter.NewAskUserResolver()
	client := &turnClient{
		stream:   adapter.NewStream(),
		resolver: resolver,
		mode:     domain.ModeAsk,
	}

	resolveWhenPending(t, resolver, "tool-1", adapter.Answer{Answers: []string{"Reject"}})

	resp, err := client.RequestPermission(context.Background(), permissionRequestParams())
	require.NoError(t, err)
	require.NotNil(t, resp.Outcome.Selected)
	assert.Equal(t, "opt-reject", string(resp.Outcome.Selected.OptionId))
}

func TestTurnClient_RequestPermission_UnknownAnswerCancels(t *testing.T) {
	t.Parallel()

	resolver := adapter.NewAskUserResolver()
	client := &turnClient{
		stream:   adapter.NewStream(),
		resolver: resolver,
		mode:     domain.ModeAsk,
	}

	resolveWhenPending(t, resolver, "tool-1", adapter.Answer{Answers: []string{"no-such-option"}})

	resp, err := client.RequestPermission(context.Background(), permissionRequestParams())
	require.NoError(t, err)
	require.NotNil(t, resp.Outcome.Cancelled)
	assert.Equal(t, "cancelled", resp.Outcome.Cancelled.Outcome)
}

func TestTurnClient_RequestPermission_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &turnClient{
		stream:   adapter.NewStream(),
		resolver: adapter.NewAskUserResolver(),
		mode:     domain.ModeAsk,
	}

	resp, err := client.RequestPermission(ctx, permissionRequestParams())
	require.NoError(t, err)
	require.NotNil(t, resp.Outcome.Cancelled)
}

func TestTurnClient_QuestionTimeoutByMode(t *testing.T) {
	t.Parallel()

	agent := &turnClient{mode: domain.ModeAgent}
	assert.Equal(t, agentQuestionTimeout, agent.questionTimeout())

	ask := &turnClient{mode: domain.ModeAsk}
	assert.Equal(t, interactiveQuestionLimit, ask.questionTimeout())

	plan := &turnClient{mode: domain.ModePlan}
	assert.Equal(t, interactiveQuestionLimit, plan.questionTimeout())
}

func notificationFromWire(t *testing.T, wire string) acpsdk.SessionNotification {
	t.Helper()
	var n acpsdk.SessionNotification
	require.NoError(t, json.Unmarshal([]byte(wire), &n))
	return n
}

func TestTurnClient_SessionUpdate_MessageAndThoughtSpans(t *testing.T) {
	t.Parallel()

	client := &turnClient{stream: adapter.NewStream()}

	msg := notificationFromWire(t, `{"sessionId":"s1","update":{"sessionUpdate":"agent_message_chunk","content":{"type":"text","text":"hello"}}}`)
	thought := notificationFromWire(t, `{"sessionId":"s1","update":{"sessionUpdate":"agent_thought_chunk","content":{"type":"text","text":"thinking"}}}`)

	require.NoError(t, client.SessionUpdate(context.Background(), msg))
	require.NoError(t, client.SessionUpdate(context.Background(), thought))
	require.NoError(t, client.SessionUpdate(context.Background(), msg))

	client.stream.Finish()
	spans := map[string]string{}
	for c := range client.stream.Chunks() {
		if c.Type == domain.ChunkTextDelta {
			spans[c.SpanID] += c.Text
		}
	}
	require.Len(t, spans, 2)
	assert.Equal(t, "hellohello", spans[client.messageSpan])
	assert.Equal(t, "thinking", spans[client.thoughtSpan])
	assert.NotEqual(t, client.messageSpan, client.thoughtSpan)
}

func TestTurnClient_SessionUpdate_ToolCallLifecycle(t *testing.T) {
	t.Parallel()

	client := &turnClient{stream: adapter.NewStream()}

	call := notificationFromWire(t, `{"sessionId":"s1","update":{"sessionUpdate":"tool_call","toolCallId":"tc1","title":"Read file","rawInput":{"path":"main.go"}}}`)
	done := notificationFromWire(t, `{"sessionId":"s1","update":{"sessionUpdate":"tool_call_update","toolCallId":"tc1","status":"completed","rawOutput":"package main"}}`)

	require.NoError(t, client.SessionUpdate(context.Background(), call))
	require.NoError(t, client.SessionUpdate(context.Background(), done))

	client.stream.Finish()
	var got []domain.Chunk
	for c := range client.stream.Chunks() {
		got = append(got, c)
	}

	require.Len(t, got, 4)
	assert.Equal(t, domain.ChunkToolInputStart, got[0].Type)
	assert.Equal(t, "tc1", got[0].ToolCallID)
	assert.Equal(t, domain.ChunkToolInputAvailable, got[1].Type)
	assert.Equal(t, "Read file", got[1].ToolName)
	assert.JSONEq(t, `{"path":"main.go"}`, string(got[1].ToolInput))
	assert.Equal(t, domain.ChunkToolOutputAvailable, got[2].Type)
	assert.Equal(t, "package main", got[2].ToolOutput)
	assert.Equal(t, domain.ChunkFinish, got[3].Type)
}

func TestTurnClient_SessionUpdate_FailedToolCall(t *testing.T) {
	t.Parallel()

	client := &turnClient{stream: adapter.NewStream()}

	failed := notificationFromWire(t, `{"sessionId":"s1","update":{"sessionUpdate":"tool_call_update","toolCallId":"tc2","status":"failed","rawOutput":"permission denied"}}`)
	require.NoError(t, client.SessionUpdate(context.Background(), failed))

	client.stream.Finish()
	var sawError bool
	for c := range client.stream.Chunks() {
		if c.Type == domain.ChunkToolOutputError {
			sawError = true
			assert.Equal(t, "permission denied", c.ToolOutput)
		}
	}
	assert.True(t, sawError)
}

func TestAdapter_Chat_NotInstalled(t *testing.T) {
	t.Parallel()

	a := New(Config{ID: "ghost", Command: "relay-test-missing-agent"}, adapter.NewHandles(), adapter.NewAskUserResolver(), nil)
	assert.False(t, a.IsAvailable())

	ch, err := a.Chat(context.Background(), domain.TurnInput{
		SubConversationID: "sub-ghost",
		Prompt:            "hi",
		Backend:           "ghost",
		Mode:              domain.ModeAgent,
	})
	require.NoError(t, err)

	var got []domain.Chunk
	deadline := time.After(10 * time.Second)
	for {
		select {
		case c, ok := <-ch:
			if !ok {
				var kinds []domain.ErrorKind
				for _, cc := range got {
					if cc.Type == domain.ChunkError {
						kinds = append(kinds, cc.ErrorKind)
					}
				}
				require.Equal(t, []domain.ErrorKind{domain.ErrorKindNotInstalled}, kinds)
				assert.Equal(t, domain.ChunkFinish, got[len(got)-1].Type)
				return
			}
			got = append(got, c)
		case <-deadline:
			t.Fatal("stream did not finish")
		}
	}
}

func TestAdapter_Chat_EmptyPrompt(t *testing.T) {
	t.Parallel()

	a := New(Config{ID: "agent", Command: "sh"}, adapter.NewHandles(), adapter.NewAskUserResolver(), nil)
	_, err := a.Chat(context.Background(), domain.TurnInput{
		SubConversationID: "sub-1",
		Prompt:            "   ",
		Backend:           "agent",
		Mode:              domain.ModeAgent,
	})
	assert.ErrorIs(t, err, domain.ErrEmptyPrompt)
}
