package domain

// Response is what the engine hands to the send/transport layer.
type Response struct {
	NodeID     string     `json:"node_id"`
	Text       string     `json:"text"`
	FormatMode FormatMode `json:"format_mode"`
	Keyboard   *Keyboard  `json:"keyboard,omitempty"`

	// RuleID is the matched rule, empty on fallback.
	RuleID  string `json:"rule_id,omitempty"`
	Matched bool   `json:"matched"`

	// AwaitingInput is set when the response left the user in a waiting state.
	AwaitingInput bool `json:"awaiting_input"`
}
