package schema

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError is one structural problem in a flow document.
type FieldError struct {
	Path   string // node id, document or "nodes[i]"
	Reason string
	Value  any // offending value, if any
}

func (e *FieldError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: %s (got %T)", e.Path, e.Reason, e.Value)
}

// FlowErrors collects every FieldError found while decoding one flow,
// so a broken file reports all of its problems at once.
type FlowErrors []error

func (e FlowErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "flow has %d problems:", len(e))
	for _, err := range e {
		b.WriteString("\n- ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e FlowErrors) Unwrap() []error { return e }

// Problems lists the individual problems carried by err, or nil when err is
// not a decoding failure.
func Problems(err error) []error {
	var fe FlowErrors
	if errors.As(err, &fe) {
		return fe
	}
	var single *FieldError
	if errors.As(err, &single) {
		return []error{single}
	}
	return nil
}
