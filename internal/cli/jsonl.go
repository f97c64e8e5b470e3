package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/aretw0/botflow/pkg/dispatch"
)

// jsonReply is one output line in JSON mode.
type jsonReply struct {
	*dispatch.Result
	Error string `json:"error,omitempty"`
}

// RunJSON drives h with JSON-Lines. Each input line is either a JSON event
// object, a JSON string, or raw text; strings go through ParseLine as userID.
// Every line produces exactly one JSON reply, errors included.
func RunJSON(ctx context.Context, h Handler, userID string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(NewInterruptibleReader(in, ctx.Done()))
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		res, err := h.Handle(ctx, decodeEvent(userID, line))
		if err != nil {
			if isInterrupted(err) {
				return nil
			}
			if encErr := encoder.Encode(jsonReply{Error: err.Error()}); encErr != nil {
				return encErr
			}
			continue
		}
		if err := encoder.Encode(jsonReply{Result: res}); err != nil {
			return err
		}
	}
	return handleExecutionError(scanner.Err())
}

func decodeEvent(userID, line string) dispatch.Event {
	if strings.HasPrefix(line, "{") {
		var ev dispatch.Event
		if err := json.Unmarshal([]byte(line), &ev); err == nil {
			if ev.UserID == "" {
				ev.UserID = userID
			}
			return ev
		}
	}

	var text string
	if err := json.Unmarshal([]byte(line), &text); err == nil {
		return ParseLine(userID, text)
	}
	return ParseLine(userID, line)
}
