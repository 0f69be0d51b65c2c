package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_TasksBlock(t *testing.T) {
	t.Parallel()

	text := "Here is my plan:\n\n```tasks\n" +
		`[{"title":"Add index","description":"Create the sqlite FTS table","priority":"high"},` +
		`{"title":"Wire endpoint","description":"Expose /search"}]` +
		"\n```\n\nLet me know."

	ex := Extract(text)
	require.Empty(t, ex.Errors)
	require.Len(t, ex.Tasks, 2)
	assert.Equal(t, "Add index", ex.Tasks[0].Title)
	assert.Equal(t, "high", ex.Tasks[0].Priority)
	assert.Equal(t, "Wire endpoint", ex.Tasks[1].Title)
	assert.False(t, ex.HasGoalPlan())
}

func TestExtract_InvalidItemsCollected(t *testing.T) {
	t.Parallel()

	text := "```tasks\n" +
		`[{"title":"Good","description":"has one"},` +
		`{"title":"No description"},` +
		`{"title":"Bad priority","description":"x","priority":"extreme"}]` +
		"\n```"

	ex := Extract(text)
	require.Len(t, ex.Tasks, 1)
	assert.Equal(t, "Good", ex.Tasks[0].Title)
	assert.Len(t, ex.Errors, 2)
}

func TestExtract_MissingDescriptionYieldsNoTasks(t *testing.T) {
	t.Parallel()

	ex := Extract("```tasks\n[{\"title\":\"Only a title\"}]\n```")
	assert.Empty(t, ex.Tasks)
	assert.NotEmpty(t, ex.Errors)
}

func TestExtract_MalformedJSON(t *testing.T) {
	t.Parallel()

	ex := Extract("```tasks\n[{not json\n```")
	assert.Empty(t, ex.Tasks)
	require.Len(t, ex.Errors, 1)
	assert.Contains(t, ex.Errors[0].Error(), "parse tasks block")
}

func TestExtract_GoalPlan(t *testing.T) {
	t.Parallel()

	text := "```goal\n" +
		`{"name":"Ship search","description":"Full-text search end to end","relevantFiles":["store/"]}` +
		"\n```\n\n```goal-tasks\n" +
		`[{"title":"Index","description":"Build it"},{"title":"Query","description":"Expose it"}]` +
		"\n```"

	ex := Extract(text)
	require.Empty(t, ex.Errors)
	require.True(t, ex.HasGoalPlan())
	assert.Equal(t, "Ship search", ex.Goal.Name)
	assert.Equal(t, []string{"store/"}, ex.Goal.RelevantFiles)
	assert.Len(t, ex.GoalTasks, 2)
	assert.Empty(t, ex.Tasks)
}

func TestExtract_GoalWithoutTasksIsIncomplete(t *testing.T) {
	t.Parallel()

	ex := Extract("```goal\n{\"name\":\"Lonely\",\"description\":\"No tasks follow\"}\n```")
	assert.NotNil(t, ex.Goal)
	assert.False(t, ex.HasGoalPlan())
}

func TestExtract_InvalidGoal(t *testing.T) {
	t.Parallel()

	ex := Extract("```goal\n{\"name\":\"No description\"}\n```")
	assert.Nil(t, ex.Goal)
	assert.NotEmpty(t, ex.Errors)
	assert.False(t, ex.HasGoalPlan())
}

func TestExtract_NoBlocks(t *testing.T) {
	t.Parallel()

	ex := Extract("Just prose, no fences.")
	assert.Nil(t, ex.Goal)
	assert.Empty(t, ex.Tasks)
	assert.Empty(t, ex.Errors)
}

func TestExtract_IgnoresOtherFences(t *testing.T) {
	t.Parallel()

	ex := Extract("```go\nfunc main() {}\n```")
	assert.Empty(t, ex.Tasks)
	assert.Empty(t, ex.Errors)
}
