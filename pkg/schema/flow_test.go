package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/botflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFlow = `
name: onboarding
nodes:
  - id: start
    type: start
    command: /start
    text: "Welcome!"
    formatMode: markdown
    conditions:
      rules:
        - id: known_city
          priority: 10
          kind: exists
          variableNames: [city]
          messageTemplate: "Back in {city}?"
        - id: ask_city
          priority: 5
          kind: not_exists
          variableNames: [city]
          messageTemplate: "Where do you live?"
          waitForInput: true
          inputVariable: city
          nextNodeId: thanks
      fallbackTemplate: "Hello again"
  - id: thanks
    text: "Thanks, {city}!"
    keyboard:
      type: inline
      buttons:
        - text: Menu
          action: goto
          target: start
  - id: photo
    type: input
    text: "Send a photo"
    input:
      variable: avatar
      modes: [photo]
      next: thanks
`

func TestParseFlow_YAML(t *testing.T) {
	flow, err := ParseFlow([]byte(sampleFlow), "yaml")
	require.NoError(t, err)

	assert.Equal(t, "onboarding", flow.Name)
	require.Len(t, flow.Nodes, 3)

	start := flow.Nodes[0]
	assert.Equal(t, domain.NodeTypeStart, start.Type)
	assert.Equal(t, domain.FormatMarkdown, start.FormatMode)
	require.NotNil(t, start.Conditions)
	assert.Len(t, start.Conditions.Rules, 2)
	assert.Equal(t, "Hello again", start.Conditions.FallbackTemplate)
	assert.True(t, start.Conditions.Rules[1].WaitForInput)

	thanks := flow.Nodes[1]
	assert.Equal(t, domain.NodeTypeMessage, thanks.Type, "type defaults to message")
	require.NotNil(t, thanks.Keyboard)
	assert.Equal(t, "start", thanks.Keyboard.Buttons[0].Target)

	photo := flow.Nodes[2]
	require.NotNil(t, photo.Input)
	assert.True(t, (&domain.InputWait{Modes: photo.Input.Modes}).Accepts(domain.InputPhoto))
}

func TestParseFlow_Errors(t *testing.T) {
	_, err := ParseFlow([]byte(`{"nodes": "x"}`), "json")
	require.Error(t, err)

	_, err = ParseFlow([]byte(`{"nodes": [{"id": "a"}, {"id": "a"}, {"text": "no id"}]}`), "json")
	require.Error(t, err)
	assert.Len(t, Problems(err), 2)
}

func TestParseFlow_DisabledConditions(t *testing.T) {
	flow, err := ParseFlow([]byte(`{"nodes": [{"id": "a", "enableConditionalMessages": false, "conditionalMessages": [{"kind": "exists"}]}]}`), "json")
	require.NoError(t, err)
	assert.Nil(t, flow.Nodes[0].Conditions)
}

func TestReadFlowFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nodes": [{"id": "start", "type": "start", "command": "/start", "text": "Hi"}]}`), 0644))

	flow, err := ReadFlowFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bot", flow.Name)
	assert.Len(t, flow.Nodes, 1)
}
