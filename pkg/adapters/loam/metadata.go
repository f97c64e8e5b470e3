package loam

// NodeMetadata is the frontmatter of a node document. Nested structures stay
// raw so the schema package can decode them with the same leniency as flow files.
type NodeMetadata struct {
	ID         string `json:"id" mapstructure:"id"`
	Type       string `json:"type" mapstructure:"type"`
	Command    string `json:"command" mapstructure:"command"`
	Text       string `json:"text" mapstructure:"text"`
	FormatMode string `json:"formatMode" mapstructure:"formatMode"`
	Next       string `json:"next" mapstructure:"next"`

	Keyboard any `json:"keyboard" mapstructure:"keyboard"`
	Input    any `json:"input" mapstructure:"input"`

	// Editor-shaped conditional responses.
	Conditions          any    `json:"conditions" mapstructure:"conditions"`
	ConditionalMessages any    `json:"conditionalMessages" mapstructure:"conditionalMessages"`
	EnableConditions    *bool  `json:"enableConditionalMessages" mapstructure:"enableConditionalMessages"`
	FallbackMessage     string `json:"fallbackMessage" mapstructure:"fallbackMessage"`
}

// raw flattens the metadata back into the map shape schema.DecodeNode expects.
// A non-empty document body takes precedence over the text field.
func (m NodeMetadata) raw(id, body string) map[string]any {
	out := map[string]any{
		"id":   id,
		"type": m.Type,
		"text": m.Text,
	}
	if body != "" {
		out["text"] = body
	}
	set := func(key string, v any) {
		if v == nil {
			return
		}
		if s, ok := v.(string); ok && s == "" {
			return
		}
		out[key] = v
	}
	set("command", m.Command)
	set("formatMode", m.FormatMode)
	set("next", m.Next)
	set("keyboard", m.Keyboard)
	set("input", m.Input)
	set("conditions", m.Conditions)
	set("conditionalMessages", m.ConditionalMessages)
	set("fallbackMessage", m.FallbackMessage)
	if m.EnableConditions != nil {
		out["enableConditionalMessages"] = *m.EnableConditions
	}
	return out
}
