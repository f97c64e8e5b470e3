package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/botflow/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFlow = `
nodes:
  - id: start
    type: start
    command: /start
    text: Hi
    next: menu
  - id: menu
    text: Menu
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeTestFlow(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate", writeTestFlow(t, testFlow))
	require.NoError(t, err)
	assert.Contains(t, out, `Flow "bot" is valid!`)

	_, err = run(t, "validate", writeTestFlow(t, testFlow+"    next: ghost\n"))
	assert.ErrorContains(t, err, "Missing node 'ghost'")
}

func TestValidateCommand_Directory(t *testing.T) {
	dir := testutils.WriteFiles(t, map[string]string{
		"start.md": "---\ntype: start\nnext: menu\n---\nHi",
		"menu.md":  "---\nid: menu\n---\nMenu",
	})

	out, err := run(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid!")
}

func TestGraphCommand(t *testing.T) {
	out, err := run(t, "graph", writeTestFlow(t, testFlow))
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "start --> menu")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "botflow version dev")
}
