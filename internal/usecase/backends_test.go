package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectAI00/relay/internal/adapter"
	"github.com/ProjectAI00/relay/internal/domain"
	"github.com/ProjectAI00/relay/internal/infra/config"
	"github.com/ProjectAI00/relay/internal/testutil"
)

func TestListBackends(t *testing.T) {
	registry := adapter.NewRegistry()
	registry.Register(&testutil.MockAdapter{BackendID: "up", Available: true})
	registry.Register(&testutil.MockAdapter{BackendID: "down", Available: false})

	backends := map[string]config.Backend{
		"up":   {Kind: config.KindJSONLine, Command: "up-cli"},
		"down": {Kind: config.KindTextStream, Command: "down-cli"},
		"off":  {Kind: config.KindACP, Command: "off-cli", Disabled: true},
	}

	out := NewListBackends(registry, backends).Execute(context.Background())
	require.Len(t, out, 3)

	// Sorted by name.
	assert.Equal(t, []string{"down", "off", "up"}, []string{out[0].Name, out[1].Name, out[2].Name})

	assert.False(t, out[0].Available)
	assert.False(t, out[1].Available)
	assert.True(t, out[1].Disabled)
	assert.True(t, out[2].Available)
}

func TestAnswerQuestion(t *testing.T) {
	resolver := adapter.NewAskUserResolver()
	uc := NewAnswerQuestion(resolver)

	err := uc.Execute(context.Background(), AnswerQuestionInput{ToolCallID: "q1", Answers: []string{"yes"}})
	assert.ErrorIs(t, err, domain.ErrQuestionNotFound)
}

func TestCancelTurn(t *testing.T) {
	handles := adapter.NewHandles()
	cancelled := false
	require.NoError(t, handles.Put("sub1", func() { cancelled = true }))

	uc := NewCancelTurn(handles)
	require.NoError(t, uc.Execute(context.Background(), CancelTurnInput{SubConversationID: "sub1"}))
	assert.True(t, cancelled)

	// Idempotent on unknown or already-cancelled ids.
	require.NoError(t, uc.Execute(context.Background(), CancelTurnInput{SubConversationID: "sub1"}))
	require.NoError(t, uc.Execute(context.Background(), CancelTurnInput{SubConversationID: "nope"}))
}
