package models

// Clone returns a deep copy of the pipeline. Snapshots handed to observers
// are never modified afterwards, so callers that want to edit one must clone it.
func (p Pipeline) Clone() Pipeline {
	out := Pipeline{
		Components: make(map[string]DependencyEntry, len(p.Components)),
		Pipeline:   make([]Step, len(p.Pipeline)),
	}
	for name, dep := range p.Components {
		out.Components[name] = dep
	}
	for i, step := range p.Pipeline {
		out.Pipeline[i] = step.Clone()
	}
	return out
}

// Clone returns a deep copy of the step
func (s Step) Clone() Step {
	return Step{
		Component:  s.Component,
		Parameters: CloneParameters(s.Parameters),
		Remap:      CloneRemap(s.Remap),
	}
}

// Clone returns a deep copy of the parameter, including nested default,
// value and extra schema payloads.
func (p Parameter) Clone() Parameter {
	out := p
	out.Default = cloneValue(p.Default)
	out.Value = cloneValue(p.Value)
	if p.Extra != nil {
		out.Extra = cloneValue(p.Extra).(map[string]any)
	}
	if p.Options != nil {
		out.Options = append([]string(nil), p.Options...)
	}
	return out
}

// CloneParameters deep-copies a parameter mapping. A nil mapping yields an
// empty, non-nil one.
func CloneParameters(params map[string]Parameter) map[string]Parameter {
	out := make(map[string]Parameter, len(params))
	for key, param := range params {
		out[key] = param.Clone()
	}
	return out
}

// CloneRemap copies a remap mapping. A nil mapping yields an empty, non-nil one.
func CloneRemap(remap map[string]string) map[string]string {
	out := make(map[string]string, len(remap))
	for src, dest := range remap {
		out[src] = dest
	}
	return out
}

// SeedParameters copies a component's parameter schema and overlays each
// entry's Value with its Default when one is declared. Entries without a
// default stay unset.
func SeedParameters(schema map[string]Parameter) map[string]Parameter {
	params := CloneParameters(schema)
	for key, param := range params {
		if param.HasDefault() {
			param.Value = cloneValue(param.Default)
			params[key] = param
		}
	}
	return params
}

// cloneValue copies the JSON-shaped containers that decoded payloads are
// made of. Scalars are returned as-is.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}
