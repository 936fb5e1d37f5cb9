package models

// Operation names accepted in pipeline scripts
const (
	OpAddDependency    = "add_dependency"
	OpRemoveDependency = "remove_dependency"
	OpAddStep          = "add_step"
	OpInsertStep       = "insert_step"
	OpMoveStep         = "move_step"
	OpDeleteStep       = "delete_step"
	OpReorder          = "reorder"
	OpSetParameter     = "set_parameter"
	OpSetRemap         = "set_remap"
	OpClearRemap       = "clear_remap"
	OpReplaceRemap     = "replace_remap"
)

// Operation is one pipeline edit in a script. Only the fields the op uses
// are read.
type Operation struct {
	Op      string            `yaml:"op"`
	Name    string            `yaml:"name,omitempty"`
	Src     string            `yaml:"src,omitempty"`
	Version string            `yaml:"version,omitempty"`
	Index   *int              `yaml:"index,omitempty"`
	Offset  int               `yaml:"offset,omitempty"`
	Order   []int             `yaml:"order,omitempty"`
	Key     string            `yaml:"key,omitempty"`
	Value   any               `yaml:"value,omitempty"`
	From    string            `yaml:"from,omitempty"`
	To      string            `yaml:"to,omitempty"`
	Remap   map[string]string `yaml:"remap,omitempty"`
}

// IndexOr returns the operation's step index, or def when the script left it
// out.
func (o Operation) IndexOr(def int) int {
	if o.Index == nil {
		return def
	}
	return *o.Index
}

// StepIndex returns a pointer to i for building operations in code
func StepIndex(i int) *int {
	return &i
}

// Script is a list of pipeline edits applied in order
type Script struct {
	Operations []Operation `yaml:"operations"`
}
