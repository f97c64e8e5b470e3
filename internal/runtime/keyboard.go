package runtime

import (
	"strings"

	"github.com/aretw0/botflow/pkg/domain"
)

// Callback token prefixes understood by the dispatcher.
const (
	CallbackConditionalPrefix = "conditional_"
	CallbackCommandPrefix     = "cmd_"
)

// ColumnPolicy decides how many buttons go on a row.
// override is the per-keyboard setting (zero when unset).
type ColumnPolicy func(buttonCount, override int) int

// DefaultColumns honours a positive override; otherwise one column for a single
// button, two for up to four buttons and three beyond that.
func DefaultColumns(buttonCount, override int) int {
	switch {
	case override > 0:
		return override
	case buttonCount <= 1:
		return 1
	case buttonCount <= 4:
		return 2
	default:
		return 3
	}
}

// BuildKeyboard converts a declarative keyboard into a renderable one.
// It returns nil for a nil spec, an unknown type, or a spec without buttons.
func BuildKeyboard(spec *domain.KeyboardSpec, policy ColumnPolicy) *domain.Keyboard {
	if spec == nil || len(spec.Buttons) == 0 {
		return nil
	}
	if policy == nil {
		policy = DefaultColumns
	}
	cols := policy(len(spec.Buttons), spec.Columns)
	if cols <= 0 {
		cols = 1
	}

	switch spec.Type {
	case domain.KeyboardInline:
		buttons := make([]domain.InlineButton, 0, len(spec.Buttons))
		for _, b := range spec.Buttons {
			buttons = append(buttons, inlineButton(b))
		}
		return &domain.Keyboard{Inline: chunk(buttons, cols)}

	case domain.KeyboardReply:
		buttons := make([]domain.ReplyButton, 0, len(spec.Buttons))
		for _, b := range spec.Buttons {
			buttons = append(buttons, domain.ReplyButton{
				Text:            b.Text,
				RequestContact:  b.Action == domain.ActionContact,
				RequestLocation: b.Action == domain.ActionLocation,
			})
		}
		resize := true
		if spec.ResizeKeyboard != nil {
			resize = *spec.ResizeKeyboard
		}
		return &domain.Keyboard{
			Reply:           chunk(buttons, cols),
			ResizeKeyboard:  resize,
			OneTimeKeyboard: spec.OneTimeKeyboard,
		}

	default:
		return nil
	}
}

func inlineButton(b domain.ButtonSpec) domain.InlineButton {
	if b.Action == domain.ActionURL || (b.Action == "" && b.URL != "") {
		return domain.InlineButton{Text: b.Text, URL: b.URL}
	}
	return domain.InlineButton{Text: b.Text, CallbackData: CallbackData(b)}
}

// CallbackData is the opaque token an inline button sends back when pressed.
// A selection without a variable has nothing to store and navigates instead.
func CallbackData(b domain.ButtonSpec) string {
	switch {
	case b.SetVariable != "":
		return SelectionToken(b)
	case b.Action == domain.ActionCommand:
		return CallbackCommandPrefix + strings.TrimPrefix(strings.TrimSpace(b.Command), "/")
	case b.Target != "":
		return b.Target
	case b.ID != "":
		return b.ID
	default:
		return b.Text
	}
}

// SelectionToken builds the conditional_<variable>_<value> token of a selection button.
func SelectionToken(b domain.ButtonSpec) string {
	value := b.SetValue
	if value == "" {
		value = b.Text
	}
	return CallbackConditionalPrefix + b.SetVariable + "_" + value
}

func chunk[T any](items []T, size int) [][]T {
	rows := make([][]T, 0, (len(items)+size-1)/size)
	for size < len(items) {
		items, rows = items[size:], append(rows, items[:size])
	}
	return append(rows, items)
}
