package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/botflow/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a function that renders markdown using glamour.
// When styled is false the markdown is passed through untouched so that
// piped output stays machine-readable.
func NewRenderer(styled bool) func(string) (string, error) {
	if !styled {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// RenderResponse formats a response for terminal preview: the text (through
// render when it is markdown), followed by the keyboard rows.
func RenderResponse(resp *domain.Response, render func(string) (string, error)) (string, error) {
	var sb strings.Builder

	text := resp.Text
	if resp.FormatMode == domain.FormatMarkdown && render != nil {
		out, err := render(text)
		if err != nil {
			return "", fmt.Errorf("failed to render markdown: %w", err)
		}
		text = out
	}
	sb.WriteString(strings.TrimRight(text, "\n"))
	sb.WriteString("\n")

	if kb := resp.Keyboard; kb != nil {
		for _, row := range kb.Inline {
			labels := make([]string, len(row))
			for i, b := range row {
				labels[i] = button(b.Text)
			}
			sb.WriteString(strings.Join(labels, " ") + "\n")
		}
		for _, row := range kb.Reply {
			labels := make([]string, len(row))
			for i, b := range row {
				labels[i] = button(b.Text)
			}
			sb.WriteString(strings.Join(labels, " ") + "\n")
		}
	}

	if resp.AwaitingInput {
		sb.WriteString(termenv.String("(waiting for input)").Faint().String() + "\n")
	}
	return sb.String(), nil
}

func button(label string) string {
	p := termenv.ColorProfile()
	return termenv.String("[ " + label + " ]").Foreground(p.Color("#818cf8")).String()
}
