package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlanFile(t *testing.T) {
	content := `
goal:
  name: Ship importer
  description: Add YAML import for goals and tasks
  priority: high
tasks:
  - title: Parse file
    description: Parse and validate the YAML shape
    time_frame: this_week
  - title: Wire CLI
    description: Add the import subcommand
`
	goal, tasks, errs, err := ParsePlanFile(content)
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.NotNil(t, goal)
	assert.Equal(t, "Ship importer", goal.Name)
	require.Len(t, tasks, 2)
	assert.Equal(t, "this_week", tasks[0].TimeFrame)
}

func TestParsePlanFile_InvalidItemsCollected(t *testing.T) {
	content := `
tasks:
  - title: Missing description
  - title: Good task
    description: Has everything
  - description: Missing title
  - title: Bad frame
    description: ok
    time_frame: someday
`
	goal, tasks, errs, err := ParsePlanFile(content)
	require.NoError(t, err)
	assert.Nil(t, goal)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Good task", tasks[0].Title)
	assert.Len(t, errs, 3)
}

func TestParsePlanFile_MalformedYAML(t *testing.T) {
	_, _, _, err := ParsePlanFile("tasks: [::::")
	assert.Error(t, err)
}

func TestParsePlanFile_InvalidGoal(t *testing.T) {
	content := `
goal:
  name: ""
  description: no name
tasks:
  - title: t
    description: d
`
	goal, tasks, errs, err := ParsePlanFile(content)
	require.NoError(t, err)
	assert.Nil(t, goal)
	assert.Len(t, tasks, 1)
	assert.NotEmpty(t, errs)
}
