package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/botflow/internal/testutils"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports/tests"
	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var flowDocs = map[string]string{
	"start.md": `---
type: start
keyboard:
  type: inline
  buttons:
    - text: Profile
      action: goto
      target: profile
---
Welcome!`,
	"profile.md": `---
id: profile
conditions:
  rules:
    - id: known
      priority: 1
      kind: exists
      variableNames: [name]
      messageTemplate: "Hi {name}"
  fallbackTemplate: What is your name?
---
Profile`,
	"help.md": `---
type: command
command: /help
next: start
---
Use the buttons.`,
}

func TestLoader_Contract(t *testing.T) {
	loader, err := Open(testutils.WriteFiles(t, flowDocs))
	require.NoError(t, err)

	tests.FlowLoaderContractTest(t, loader, map[string]string{
		"start":   "start",
		"profile": "",
		"help":    "help",
	})
}

func TestLoader_DecodesDocuments(t *testing.T) {
	dir := testutils.WriteFiles(t, flowDocs)

	loader, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), loader.Name())

	start, err := loader.GetNode("start")
	require.NoError(t, err)
	assert.Equal(t, domain.NodeTypeStart, start.Type)
	assert.Equal(t, "Welcome!", start.Text)
	require.NotNil(t, start.Keyboard)
	require.Len(t, start.Keyboard.Buttons, 1)
	assert.Equal(t, "profile", start.Keyboard.Buttons[0].Target)

	profile, err := loader.GetNode("profile")
	require.NoError(t, err)
	assert.Equal(t, domain.NodeTypeMessage, profile.Type)
	require.NotNil(t, profile.Conditions)
	require.Len(t, profile.Conditions.Rules, 1)
	rule := profile.Conditions.Rules[0]
	assert.Equal(t, "known", rule.ID)
	assert.Equal(t, 1, rule.Priority)
	assert.Equal(t, domain.KindExists, rule.Condition.Kind())
	assert.Equal(t, "What is your name?", profile.FallbackText())

	help, err := loader.NodeByCommand("/help")
	require.NoError(t, err)
	assert.Equal(t, "help", help.ID)
	assert.Equal(t, "start", help.Next)

	nodes, err := loader.ListNodes()
	require.NoError(t, err)
	assert.Len(t, nodes, 3)
}

func TestLoader_TypedRepository(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t, flowDocs, loam.WithVersioning(false))

	loader, err := New(loam.NewTypedRepository[NodeMetadata](repo), WithName("docs"))
	require.NoError(t, err)
	assert.Equal(t, "docs", loader.Name())

	_, err = loader.GetNode("missing")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestLoader_IDCollision(t *testing.T) {
	dir := testutils.WriteFiles(t, map[string]string{
		"a.md": "---\nid: shared\n---\nA",
		"b.md": "---\nid: shared\n---\nB",
	})

	_, err := Open(dir)
	assert.ErrorContains(t, err, "collision detected")
}

func TestLoader_ReloadKeepsLastGoodFlow(t *testing.T) {
	dir := testutils.WriteFiles(t, flowDocs)
	loader, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "start.md"), []byte("---\ntype: start\n---\nHello again"), 0644))
	require.NoError(t, loader.Reload(context.Background()))

	start, err := loader.GetNode("start")
	require.NoError(t, err)
	assert.Equal(t, "Hello again", start.Text)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "dup.md"), []byte("---\nid: start\n---\nDuplicate"), 0644))
	assert.Error(t, loader.Reload(context.Background()))

	start, err = loader.GetNode("start")
	require.NoError(t, err)
	assert.Equal(t, "Hello again", start.Text)
}
