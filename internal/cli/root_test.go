package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectAI00/relay/internal/app"
	"github.com/ProjectAI00/relay/internal/infra/config"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func newTestContainer(t *testing.T) *app.Container {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.DataDir = t.TempDir()
	c, err := app.NewWithConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func execute(t *testing.T, c *app.Container, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(c, "test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTaskCommands(t *testing.T) {
	c := newTestContainer(t)

	out, err := execute(t, c, "task", "new", "--title", "Fix login bug", "--priority", "high")
	require.NoError(t, err)
	assert.Contains(t, out, "Created task")

	id := strings.Fields(strings.TrimSpace(out))[2]
	id = strings.TrimSuffix(id, ":")

	out, err = execute(t, c, "task", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Fix login bug")

	out, err = execute(t, c, "task", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Fix login bug")

	out, err = execute(t, c, "task", "edit", id, "--status", "in_progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated task")

	out, err = execute(t, c, "task", "rm", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted task")

	out, err = execute(t, c, "task", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks.")
}

func TestGoalCommands(t *testing.T) {
	c := newTestContainer(t)

	out, err := execute(t, c, "goal", "new", "--name", "Ship v1", "--desc", "First release")
	require.NoError(t, err)
	assert.Contains(t, out, "Created goal")

	id := strings.Fields(strings.TrimSpace(out))[2]
	id = strings.TrimSuffix(id, ":")

	out, err = execute(t, c, "goal", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Ship v1")
	assert.Contains(t, out, "First release")

	out, err = execute(t, c, "goal", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Ship v1")

	_, err = execute(t, c, "goal", "rm", id)
	require.NoError(t, err)
}

func TestTaskImportCommand(t *testing.T) {
	c := newTestContainer(t)

	dir := t.TempDir()
	path := dir + "/plan.yaml"
	content := "goal:\n  name: Ship v1\n  description: Release\ntasks:\n  - title: Changelog\n    description: Write it\n"
	require.NoError(t, writeFile(path, content))

	out, err := execute(t, c, "task", "import", path, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would create goal")
	assert.Contains(t, out, "Would create task")

	out, err = execute(t, c, "task", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created goal")

	out, err = execute(t, c, "task", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Changelog")
}

func TestBackendsCommand(t *testing.T) {
	c := newTestContainer(t)

	out, err := execute(t, c, "backends")
	require.NoError(t, err)
	assert.Contains(t, out, "claude")
	assert.Contains(t, out, "codex")
	assert.Contains(t, out, "gemini")
}

func TestChatCommandRequiresBackend(t *testing.T) {
	c := newTestContainer(t)

	_, err := execute(t, c, "chat", "hello")
	assert.Error(t, err)
}
