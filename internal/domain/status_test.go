package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name   string
		from   Status
		to     Status
		wanted bool
	}{
		{"todo to in_progress", StatusTodo, StatusInProgress, true},
		{"todo to ongoing", StatusTodo, StatusOngoing, true},
		{"in_progress to review", StatusInProgress, StatusReview, true},
		{"review to done", StatusReview, StatusDone, true},
		{"done is terminal", StatusDone, StatusInProgress, false},
		{"done to done", StatusDone, StatusDone, false},
		{"todo to review skips work", StatusTodo, StatusReview, false},
		{"unknown status", Status("bogus"), StatusDone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wanted, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_IsPending(t *testing.T) {
	assert.True(t, StatusTodo.IsPending())
	assert.True(t, StatusInProgress.IsPending())
	assert.True(t, StatusOngoing.IsPending())
	assert.False(t, StatusReview.IsPending())
	assert.False(t, StatusDone.IsPending())
}

func TestStatus_IsTerminal(t *testing.T) {
	for _, s := range AllStatuses() {
		assert.Equal(t, s == StatusDone, s.IsTerminal(), "status %s", s)
	}
}

func TestStatus_Display(t *testing.T) {
	assert.Equal(t, "In Progress", StatusInProgress.Display())
	assert.Equal(t, "Done", StatusDone.Display())
	assert.Equal(t, "weird", Status("weird").Display())
}

func TestPriority_IsValid(t *testing.T) {
	assert.True(t, PriorityHigh.IsValid())
	assert.True(t, PriorityUrgent.IsValid())
	assert.False(t, Priority("critical").IsValid())
	assert.False(t, Priority("").IsValid())
}
