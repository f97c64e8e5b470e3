package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/botflow/internal/presentation/tui"
	"github.com/aretw0/botflow/pkg/dispatch"
	"github.com/aretw0/botflow/pkg/domain"
)

// Handler dispatches one incoming event.
type Handler interface {
	Handle(ctx context.Context, ev dispatch.Event) (*dispatch.Result, error)
}

// ChatOptions configures an interactive chat session.
type ChatOptions struct {
	UserID string
	In     io.Reader
	Out    io.Writer
	// Render formats markdown responses; nil prints them raw.
	Render func(string) (string, error)
}

// ParseLine turns one line typed in the chat into an event:
//
//	/start            command
//	!conditional_x_y  button press carrying callback data
//	@photo:FILE_ID    media upload of the given kind
//	anything else     text message
func ParseLine(userID, line string) dispatch.Event {
	ev := dispatch.Event{UserID: userID}
	switch {
	case strings.HasPrefix(line, "/"):
		ev.Kind = dispatch.EventCommand
		ev.Command = line
	case strings.HasPrefix(line, "!"):
		ev.Kind = dispatch.EventCallback
		ev.Data = strings.TrimPrefix(line, "!")
	case strings.HasPrefix(line, "@"):
		kind, fileID, _ := strings.Cut(strings.TrimPrefix(line, "@"), ":")
		ev.Kind = dispatch.EventMedia
		ev.Media = domain.InputMode(kind)
		ev.FileID = fileID
	default:
		ev.Kind = dispatch.EventText
		ev.Text = line
	}
	return ev
}

// RunChat reads lines from opts.In until EOF, "q", "quit" or "exit", sending
// each one to h as the configured user and printing the replies.
func RunChat(ctx context.Context, h Handler, opts ChatOptions) error {
	scanner := bufio.NewScanner(NewInterruptibleReader(opts.In, ctx.Done()))
	for {
		fmt.Fprint(opts.Out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(opts.Out)
			return handleExecutionError(scanner.Err())
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		}

		res, err := h.Handle(ctx, ParseLine(opts.UserID, line))
		if err != nil {
			if isInterrupted(err) {
				return nil
			}
			printSystemMessage(opts.Out, "Error: %v", err)
			continue
		}
		if res.Ignored {
			printSystemMessage(opts.Out, "(ignored)")
		}
		if res.Consumed != nil {
			printSystemMessage(opts.Out, "Stored %s = %q", res.Consumed.Variable, res.Consumed.Value)
		}
		for _, resp := range res.Responses {
			out, err := tui.RenderResponse(resp, opts.Render)
			if err != nil {
				return err
			}
			fmt.Fprint(opts.Out, out)
		}
	}
}

var errInterrupted = errors.New("interrupted")

// InterruptibleReader wraps an io.Reader (like os.Stdin) and checks for a cancellation signal.
type InterruptibleReader struct {
	base   io.Reader
	cancel <-chan struct{}
}

func NewInterruptibleReader(base io.Reader, cancel <-chan struct{}) *InterruptibleReader {
	return &InterruptibleReader{
		base:   base,
		cancel: cancel,
	}
}

func (r *InterruptibleReader) Read(p []byte) (n int, err error) {
	select {
	case <-r.cancel:
		return 0, errInterrupted
	default:
	}

	n, err = r.base.Read(p)

	select {
	case <-r.cancel:
		return 0, errInterrupted
	default:
	}
	return n, err
}

func isInterrupted(err error) bool {
	return errors.Is(err, errInterrupted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
