package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/ProjectAI00/relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskUserResolver_ResolveDelivers(t *testing.T) {
	r := NewAskUserResolver()

	done := make(chan Answer, 1)
	go func() {
		ans, err := r.Wait(context.Background(), "call1", time.Minute)
		require.NoError(t, err)
		done <- ans
	}()

	// Wait for the slot to appear before resolving.
	require.Eventually(t, func() bool { return r.Pending("call1") }, time.Second, time.Millisecond)

	require.NoError(t, r.Resolve("call1", Answer{Answers: []string{"yes"}}))
	ans := <-done
	assert.Equal(t, []string{"yes"}, ans.Answers)
	assert.False(t, ans.TimedOut)
}

func TestAskUserResolver_Timeout(t *testing.T) {
	r := NewAskUserResolver()
	ans, err := r.Wait(context.Background(), "call1", 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ans.TimedOut)
	assert.False(t, r.Pending("call1"))
}

func TestAskUserResolver_DoubleResolution(t *testing.T) {
	r := NewAskUserResolver()

	go func() {
		_, _ = r.Wait(context.Background(), "call1", time.Minute)
	}()
	require.Eventually(t, func() bool { return r.Pending("call1") }, time.Second, time.Millisecond)

	require.NoError(t, r.Resolve("call1", Answer{Answers: []string{"a"}}))
	assert.ErrorIs(t, r.Resolve("call1", Answer{Answers: []string{"b"}}), domain.ErrQuestionNotFound)
}

func TestAskUserResolver_ResolveUnknown(t *testing.T) {
	r := NewAskUserResolver()
	assert.ErrorIs(t, r.Resolve("nope", Answer{}), domain.ErrQuestionNotFound)
}

func TestAskUserResolver_ContextCancel(t *testing.T) {
	r := NewAskUserResolver()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := r.Wait(ctx, "call1", time.Minute)
		errCh <- err
	}()
	require.Eventually(t, func() bool { return r.Pending("call1") }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.Eventually(t, func() bool { return !r.Pending("call1") }, time.Second, time.Millisecond)
}
