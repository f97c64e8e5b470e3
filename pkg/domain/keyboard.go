package domain

// KeyboardType selects between reply keyboards and inline keyboards.
type KeyboardType string

const (
	KeyboardReply  KeyboardType = "reply"
	KeyboardInline KeyboardType = "inline"
)

// ButtonAction describes what an inline button does when pressed.
type ButtonAction string

const (
	ActionGoto      ButtonAction = "goto"
	ActionURL       ButtonAction = "url"
	ActionCommand   ButtonAction = "command"
	ActionSelection ButtonAction = "selection"
	ActionContact   ButtonAction = "contact"
	ActionLocation  ButtonAction = "location"
)

// ButtonSpec is the declarative definition of a single button.
type ButtonSpec struct {
	ID      string       `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Text    string       `json:"text" yaml:"text" mapstructure:"text"`
	Action  ButtonAction `json:"action,omitempty" yaml:"action,omitempty" mapstructure:"action"`
	URL     string       `json:"url,omitempty" yaml:"url,omitempty" mapstructure:"url"`
	Target  string       `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`
	Command string       `json:"command,omitempty" yaml:"command,omitempty" mapstructure:"command"`

	// SetVariable makes the button persist a choice into a variable.
	// SetValue defaults to the button text.
	SetVariable string `json:"setVariable,omitempty" yaml:"setVariable,omitempty" mapstructure:"setVariable"`
	SetValue    string `json:"setValue,omitempty" yaml:"setValue,omitempty" mapstructure:"setValue"`
}

// KeyboardSpec is the declarative keyboard attached to a rule or a node.
type KeyboardSpec struct {
	Type    KeyboardType `json:"type" yaml:"type" mapstructure:"type"`
	Buttons []ButtonSpec `json:"buttons" yaml:"buttons" mapstructure:"buttons"`

	// Columns overrides the column-balancing policy when positive.
	Columns int `json:"columns,omitempty" yaml:"columns,omitempty" mapstructure:"columns"`

	// ResizeKeyboard defaults to true for reply keyboards.
	ResizeKeyboard  *bool `json:"resizeKeyboard,omitempty" yaml:"resizeKeyboard,omitempty" mapstructure:"resizeKeyboard"`
	OneTimeKeyboard bool  `json:"oneTimeKeyboard,omitempty" yaml:"oneTimeKeyboard,omitempty" mapstructure:"oneTimeKeyboard"`
}

// Keyboard is the renderable keyboard handed to the transport.
// Exactly one of Inline or Reply is populated.
type Keyboard struct {
	Inline          [][]InlineButton `json:"inline_keyboard,omitempty"`
	Reply           [][]ReplyButton  `json:"keyboard,omitempty"`
	ResizeKeyboard  bool             `json:"resize_keyboard,omitempty"`
	OneTimeKeyboard bool             `json:"one_time_keyboard,omitempty"`
}

// InlineButton is a button attached to a message.
type InlineButton struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

// ReplyButton is a button of a reply keyboard.
type ReplyButton struct {
	Text            string `json:"text"`
	RequestContact  bool   `json:"request_contact,omitempty"`
	RequestLocation bool   `json:"request_location,omitempty"`
}
