package domain

import (
	"encoding/json"
	"strings"
)

// UserRecord is the durable-tier document stored for a user.
// It may carry a nested "user_data" object (or its JSON encoding) whose values are
// either plain values or wrapper objects of the form {"value": ...}.
type UserRecord map[string]any

// UserDataKey is the top-level field that holds collected variables.
const UserDataKey = "user_data"

// VariableRecord is the result of resolving a variable name for a user.
type VariableRecord struct {
	Exists bool    `json:"exists"`
	Value  *string `json:"value"`
}

// NewVariableRecord builds a record for a present value.
// A value exists only if it is non-empty after trimming.
func NewVariableRecord(value string) VariableRecord {
	v := value
	return VariableRecord{
		Exists: strings.TrimSpace(value) != "",
		Value:  &v,
	}
}

// Missing returns the record for an unresolved variable.
func Missing() VariableRecord {
	return VariableRecord{}
}

// String returns the value and whether it is non-null.
func (r VariableRecord) String() (string, bool) {
	if r.Value == nil {
		return "", false
	}
	return *r.Value, true
}

// SetVariable stores name=value inside user_data, keeping the other collected values.
// A user_data field holding undecodable JSON is replaced.
func (r UserRecord) SetVariable(name, value string) {
	merged := make(map[string]any)
	switch v := r[UserDataKey].(type) {
	case map[string]any:
		for k, val := range v {
			merged[k] = val
		}
	case string:
		if err := json.Unmarshal([]byte(v), &merged); err != nil || merged == nil {
			merged = make(map[string]any)
		}
	}
	merged[name] = value
	r[UserDataKey] = merged
}
