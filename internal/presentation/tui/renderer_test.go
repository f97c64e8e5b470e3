package tui_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/aretw0/botflow/internal/presentation/tui"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderResponse(t *testing.T) {
	resp := &domain.Response{
		Text:       "Where do you live?",
		FormatMode: domain.FormatNone,
		Keyboard: &domain.Keyboard{
			Inline: [][]domain.InlineButton{{{Text: "Lisbon"}, {Text: "Porto"}}},
		},
		AwaitingInput: true,
	}

	out, err := tui.RenderResponse(resp, tui.NewRenderer(false))
	require.NoError(t, err)
	assert.Contains(t, out, "Where do you live?")
	assert.Contains(t, out, "Lisbon")
	assert.Contains(t, out, "Porto")
	assert.Contains(t, out, "waiting for input")
}

func TestRenderResponse_MarkdownUsesRenderer(t *testing.T) {
	resp := &domain.Response{Text: "**hi**", FormatMode: domain.FormatMarkdown}

	out, err := tui.RenderResponse(resp, func(s string) (string, error) { return "rendered:" + s, nil })
	require.NoError(t, err)
	assert.Contains(t, out, "rendered:**hi**")

	_, err = tui.RenderResponse(resp, func(string) (string, error) { return "", errors.New("boom") })
	assert.Error(t, err)
}

func TestNewRenderer_Styled(t *testing.T) {
	out, err := tui.NewRenderer(true)("# Title")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.NotEmpty(t, buf.String())
}
