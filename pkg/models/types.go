package models

// Parameter types understood by the dashboard editor. Other types are carried
// through untouched and shown as unsupported.
const (
	ParameterTypeText     = "text"
	ParameterTypeBoolean  = "boolean"
	ParameterTypeDropdown = "dropdown"
)

// Parameter is a single entry of a component's parameter schema. Inside a
// pipeline step it additionally carries the concrete Value chosen for it.
type Parameter struct {
	Type        string   `json:"type" yaml:"type"`
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Default     any      `json:"default,omitempty" yaml:"default,omitempty"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"`

	// Value is nil until a default seeds it or the user sets it. A nil
	// Value means "unset".
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Extra holds schema keys the dashboard does not interpret (min,
	// placeholder and the like). They are encoded back alongside the known
	// keys so a step keeps the component's whole schema.
	Extra map[string]any `json:"-" yaml:"-"`
}

// HasDefault reports whether the schema declares a default value. An
// explicit null default decodes to nil and is treated as absent, so the
// parameter stays unset either way.
func (p Parameter) HasDefault() bool {
	return p.Default != nil
}

// IsSet reports whether a concrete value has been chosen
func (p Parameter) IsSet() bool {
	return p.Value != nil
}

// Field describes a component input or output
type Field struct {
	Type string `json:"type" yaml:"type"`
}

// Descriptor is the daemon's description of a running component (its cruxfile)
type Descriptor struct {
	Name        string               `json:"name" yaml:"name"`
	Author      string               `json:"author,omitempty" yaml:"author,omitempty"`
	Version     string               `json:"version,omitempty" yaml:"version,omitempty"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Inputs      map[string]Field     `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs     map[string]Field     `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Parameters  map[string]Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// DependencyEntry records where a pipeline expects a named component to come
// from and which versions it accepts.
type DependencyEntry struct {
	Src     string `json:"src,omitempty" yaml:"src,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Step is one stage of the ordered pipeline. Steps have no identity beyond
// their position.
type Step struct {
	Component  string               `json:"component" yaml:"component"`
	Parameters map[string]Parameter `json:"parameters" yaml:"parameters"`
	Remap      map[string]string    `json:"remap" yaml:"remap"`
}

// Pipeline is the aggregate edited by the dashboard: the declared
// dependencies keyed by component name and the ordered step list.
type Pipeline struct {
	Components map[string]DependencyEntry `json:"components" yaml:"components"`
	Pipeline   []Step                     `json:"pipeline" yaml:"pipeline"`
}

// NewPipeline returns the empty pipeline a session starts with
func NewPipeline() Pipeline {
	return Pipeline{
		Components: map[string]DependencyEntry{},
		Pipeline:   []Step{},
	}
}

// Len returns the number of steps
func (p Pipeline) Len() int {
	return len(p.Pipeline)
}

// InRange reports whether index addresses an existing step
func (p Pipeline) InRange(index int) bool {
	return index >= 0 && index < len(p.Pipeline)
}

// StepNames returns the component name of every step, in order
func (p Pipeline) StepNames() []string {
	names := make([]string, len(p.Pipeline))
	for i, step := range p.Pipeline {
		names[i] = step.Component
	}
	return names
}
