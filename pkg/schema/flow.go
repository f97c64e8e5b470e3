package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/botflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Flow is a parsed flow document.
type Flow struct {
	Name  string
	Nodes []domain.Node
}

type wireNode struct {
	domain.Node `mapstructure:",squash"`

	Conditions          any    `mapstructure:"conditions"`
	ConditionalMessages any    `mapstructure:"conditionalMessages"`
	EnableConditions    *bool  `mapstructure:"enableConditionalMessages"`
	FallbackMessage     string `mapstructure:"fallbackMessage"`
}

// ReadFlowFile reads a flow from a JSON or YAML file, chosen by extension.
func ReadFlowFile(path string) (*Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow file: %w", err)
	}

	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}

	flow, err := ParseFlow(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if flow.Name == "" {
		flow.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return flow, nil
}

// ParseFlow parses a flow document. format is "json" or "yaml".
func ParseFlow(data []byte, format string) (*Flow, error) {
	var doc map[string]any
	switch format {
	case "json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}
	}

	rawNodes, ok := doc["nodes"].([]any)
	if !ok {
		return nil, &FieldError{Path: "nodes", Reason: "expected a list of nodes", Value: doc["nodes"]}
	}

	flow := &Flow{}
	if name, ok := doc["name"].(string); ok {
		flow.Name = name
	}

	var errs []error
	seen := make(map[string]bool, len(rawNodes))
	for i, raw := range rawNodes {
		node, err := DecodeNode(raw)
		if err != nil {
			errs = append(errs, &FieldError{Path: fmt.Sprintf("nodes[%d]", i), Reason: err.Error()})
			continue
		}
		if seen[node.ID] {
			errs = append(errs, &FieldError{Path: node.ID, Reason: "duplicate node id"})
			continue
		}
		seen[node.ID] = true
		flow.Nodes = append(flow.Nodes, *node)
	}

	if len(errs) > 0 {
		return nil, FlowErrors(errs)
	}
	return flow, nil
}

// DecodeNode decodes one node object. Node fields are strict; the conditional
// rules it owns are decoded with DecodeRuleSet.
func DecodeNode(raw any) (*domain.Node, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("node is %T, not an object", raw)
	}

	var w wireNode
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &w,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(obj); err != nil {
		return nil, err
	}

	node := w.Node
	if strings.TrimSpace(node.ID) == "" {
		return nil, fmt.Errorf("node has no id")
	}
	if node.Type == "" {
		node.Type = domain.NodeTypeMessage
	}
	node.FormatMode = domain.ParseFormatMode(string(node.FormatMode))
	node.Keyboard = normaliseKeyboard(node.Keyboard)
	if node.Input != nil && len(node.Input.Modes) == 0 {
		node.Input.Modes = []domain.InputMode{domain.InputText}
	}

	rawRules := w.Conditions
	if rawRules == nil {
		rawRules = w.ConditionalMessages
	}
	enabled := w.EnableConditions == nil || *w.EnableConditions
	if rawRules != nil && enabled {
		rs := DecodeRuleSet(rawRules)
		if rs.FallbackTemplate == "" {
			rs.FallbackTemplate = w.FallbackMessage
		}
		node.Conditions = &rs
	}

	return &node, nil
}
