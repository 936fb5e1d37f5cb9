package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/pluqqy/crux-terminal/pkg/models"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// TableFormatter helps format tabular output
type TableFormatter struct {
	writer *tabwriter.Writer
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	return &TableFormatter{writer: tw}
}

// Header writes the table header
func (t *TableFormatter) Header(columns ...string) {
	fmt.Fprintln(t.writer, strings.Join(columns, "\t"))
	fmt.Fprintln(t.writer, strings.Repeat("-", 80))
}

// Row writes a table row
func (t *TableFormatter) Row(values ...string) {
	fmt.Fprintln(t.writer, strings.Join(values, "\t"))
}

// Flush writes the buffered table to output
func (t *TableFormatter) Flush() {
	t.writer.Flush()
}

// OutputResults formats and outputs results based on the specified format
func OutputResults(w io.Writer, format string, data interface{}) error {
	switch OutputFormat(format) {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)

	case FormatYAML:
		yamlData, err := yaml.Marshal(data)
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(yamlData))
		return nil

	case FormatText, "":
		// For text format, we expect the caller to have already formatted
		// the data appropriately. This is a fallback.
		fmt.Fprintf(w, "%v\n", data)
		return nil

	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// ValidateOutputFormat checks a --output value
func ValidateOutputFormat(format string) error {
	switch OutputFormat(format) {
	case FormatText, FormatJSON, FormatYAML, "":
		return nil
	}
	return fmt.Errorf("unsupported output format: %s (must be: text, json, or yaml)", format)
}

// TruncateString truncates a string to the specified length
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// FormatValue renders a parameter value for text output
func FormatValue(v any) string {
	if v == nil {
		return "(unset)"
	}
	return fmt.Sprintf("%v", v)
}

// WritePipelineText writes a human readable rendering of a pipeline
func WritePipelineText(w io.Writer, p models.Pipeline) {
	names := make([]string, 0, len(p.Components))
	for name := range p.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "Dependencies (%d):\n", len(names))
	if len(names) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, name := range names {
		dep := p.Components[name]
		version := dep.Version
		if version == "" {
			version = ">=0.0.0"
		}
		src := dep.Src
		if src == "" {
			src = "-"
		}
		fmt.Fprintf(w, "  %s  version %s  src %s\n", name, version, src)
	}

	fmt.Fprintf(w, "\nSteps (%d):\n", p.Len())
	if p.Len() == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i, step := range p.Pipeline {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step.Component)

		keys := make([]string, 0, len(step.Parameters))
		for key := range step.Parameters {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			param := step.Parameters[key]
			fmt.Fprintf(w, "       %s (%s) = %s\n", key, param.Type, FormatValue(param.Value))
		}

		srcs := make([]string, 0, len(step.Remap))
		for src := range step.Remap {
			srcs = append(srcs, src)
		}
		sort.Strings(srcs)
		for _, src := range srcs {
			fmt.Fprintf(w, "       remap %s -> %s\n", src, step.Remap[src])
		}
	}
}
