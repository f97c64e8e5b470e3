package domain

// NodeType constants define how a node is reached and what it does.
const (
	// NodeTypeStart is reached through the /start command.
	NodeTypeStart = "start"
	// NodeTypeCommand is reached through its Command.
	NodeTypeCommand = "command"
	// NodeTypeMessage is reached through buttons or transitions.
	NodeTypeMessage = "message"
	// NodeTypeInput sends its text and collects user input.
	NodeTypeInput = "input"
)

// InputMode is a kind of user input a node can collect.
type InputMode string

const (
	InputText     InputMode = "text"
	InputPhoto    InputMode = "photo"
	InputVideo    InputMode = "video"
	InputAudio    InputMode = "audio"
	InputDocument InputMode = "document"
)

// InputConfig configures node-level input collection.
type InputConfig struct {
	Variable    string       `json:"variable" yaml:"variable" mapstructure:"variable"`
	Modes       []InputMode  `json:"modes,omitempty" yaml:"modes,omitempty" mapstructure:"modes"`
	Next        string       `json:"next,omitempty" yaml:"next,omitempty" mapstructure:"next"`
	SkipButtons []SkipButton `json:"skipButtons,omitempty" yaml:"skipButtons,omitempty" mapstructure:"skipButtons"`
}

// Node is a point in the flow graph.
type Node struct {
	ID         string        `json:"id" yaml:"id" mapstructure:"id"`
	Type       string        `json:"type" yaml:"type" mapstructure:"type"`
	Command    string        `json:"command,omitempty" yaml:"command,omitempty" mapstructure:"command"`
	Text       string        `json:"text" yaml:"text" mapstructure:"text"`
	FormatMode FormatMode    `json:"formatMode,omitempty" yaml:"formatMode,omitempty" mapstructure:"formatMode"`
	Keyboard   *KeyboardSpec `json:"keyboard,omitempty" yaml:"keyboard,omitempty" mapstructure:"keyboard"`

	// Conditions holds the node's conditional responses, if any.
	// It is decoded leniently by the schema package, never by mapstructure directly.
	Conditions *RuleSet `json:"-" yaml:"-" mapstructure:"-"`

	Input *InputConfig `json:"input,omitempty" yaml:"input,omitempty" mapstructure:"input"`

	// Next is the node reached automatically after this one, if any.
	Next string `json:"next,omitempty" yaml:"next,omitempty" mapstructure:"next"`
}

// FallbackText is the text used when no rule matches: the rule set's fallback
// template, or the node text when that is empty.
func (n *Node) FallbackText() string {
	if n.Conditions != nil && n.Conditions.FallbackTemplate != "" {
		return n.Conditions.FallbackTemplate
	}
	return n.Text
}

// FallbackKeyboard is the keyboard used when no rule matches.
func (n *Node) FallbackKeyboard() *KeyboardSpec {
	if n.Conditions != nil && n.Conditions.FallbackKeyboard != nil {
		return n.Conditions.FallbackKeyboard
	}
	return n.Keyboard
}
