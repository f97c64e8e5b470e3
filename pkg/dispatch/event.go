package dispatch

import (
	"errors"

	"github.com/aretw0/botflow/pkg/domain"
)

var (
	// ErrEmptyUserID is returned for events without a user.
	ErrEmptyUserID = errors.New("event has no user id")
	// ErrUnknownCommand is returned when no node answers a command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUnknownCallback is returned when callback data matches no button or node.
	ErrUnknownCallback = errors.New("unknown callback data")
	// ErrUnsupportedEvent is returned for an unrecognised event kind.
	ErrUnsupportedEvent = errors.New("unsupported event kind")
)

// EventKind is the category of an incoming event.
type EventKind string

const (
	EventCommand  EventKind = "command"
	EventCallback EventKind = "callback"
	EventText     EventKind = "text"
	EventMedia    EventKind = "media"
)

// Event is one message or button press from a user.
type Event struct {
	UserID string    `json:"user_id"`
	Kind   EventKind `json:"kind"`

	// Command is the command text for EventCommand, with or without the slash.
	Command string `json:"command,omitempty"`
	// Data is the callback data for EventCallback.
	Data string `json:"data,omitempty"`
	// Text is the message text for EventText.
	Text string `json:"text,omitempty"`
	// Media and FileID describe an EventMedia upload.
	Media  domain.InputMode `json:"media,omitempty"`
	FileID string           `json:"file_id,omitempty"`
}

// Consumption reports a value collected from the user.
type Consumption struct {
	Variable    string `json:"variable"`
	Value       string `json:"value"`
	Conditional bool   `json:"conditional"`
}

// Result is everything produced while handling one event.
type Result struct {
	Responses []*domain.Response `json:"responses"`
	Consumed  *Consumption       `json:"consumed,omitempty"`
	// Ignored is set when the event was valid but nothing was waiting for it.
	Ignored bool `json:"ignored,omitempty"`
}
