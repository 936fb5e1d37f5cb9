package models

import (
	"encoding/json"
	"sort"

	"gopkg.in/yaml.v3"
)

// parameterFields has Parameter's layout without its encoding methods
type parameterFields Parameter

// parameterKeys are the schema keys Parameter decodes into named fields
var parameterKeys = []string{"type", "name", "description", "default", "options", "value"}

// UnmarshalJSON decodes the known keys into fields and keeps the rest in Extra
func (p *Parameter) UnmarshalJSON(data []byte) error {
	var fields parameterFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Parameter(fields)
	p.Extra = extraKeys(raw)
	return nil
}

// MarshalJSON encodes the known fields plus Extra. Known fields win when
// Extra repeats one of their keys.
func (p Parameter) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(parameterFields(p))
	if err != nil || len(p.Extra) == 0 {
		return data, err
	}

	var known map[string]any
	if err := json.Unmarshal(data, &known); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(p.Extra)+len(known))
	for key, value := range p.Extra {
		out[key] = value
	}
	for key, value := range known {
		out[key] = value
	}
	return json.Marshal(out)
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents
func (p *Parameter) UnmarshalYAML(value *yaml.Node) error {
	var fields parameterFields
	if err := value.Decode(&fields); err != nil {
		return err
	}
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*p = Parameter(fields)
	p.Extra = extraKeys(raw)
	return nil
}

// MarshalYAML emits the known fields first, then Extra in key order
func (p Parameter) MarshalYAML() (any, error) {
	var node yaml.Node
	if err := node.Encode(parameterFields(p)); err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return &node, nil
	}

	present := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		present[node.Content[i].Value] = true
	}

	keys := make([]string, 0, len(p.Extra))
	for key := range p.Extra {
		if !present[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		var val yaml.Node
		if err := val.Encode(p.Extra[key]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&val,
		)
	}
	return &node, nil
}

func extraKeys(raw map[string]any) map[string]any {
	for _, key := range parameterKeys {
		delete(raw, key)
	}
	if len(raw) == 0 {
		return nil
	}
	return raw
}
